// Package sqlite implements the hoard metadata store on an embedded SQLite
// engine.
//
// The Engine holds a private working copy of the database blob; Export
// snapshots it back into a single relocatable file image. The Store
// translates entity operations into statements against the Engine and
// returns plain data, never holding cursors across calls.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const workingFileName = "working.sqlite"

// Engine is an embedded SQLite database opened from a blob.
type Engine struct {
	db      *sql.DB
	workDir string
}

// OpenEngine opens a database from blob. A nil or empty blob yields a fresh
// empty database. The blob is copied; the caller keeps ownership of it.
func OpenEngine(blob []byte) (*Engine, error) {
	workDir, err := os.MkdirTemp("", "hoard-engine-*")
	if err != nil {
		return nil, fmt.Errorf("creating engine work dir: %w", err)
	}
	path := filepath.Join(workDir, workingFileName)

	if len(blob) > 0 {
		if err := os.WriteFile(path, blob, 0o600); err != nil {
			os.RemoveAll(workDir)
			return nil, fmt.Errorf("writing working copy: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: statements run to completion one at a time, and the
	// last-insert id is always read from the connection that inserted.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Force SQLite to read the header so a corrupt blob fails here.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("reading database: %w", err)
	}

	slog.Debug("Engine opened", "bytes", len(blob), "objects", n)
	return &Engine{db: db, workDir: workDir}, nil
}

// Exec runs a statement that returns no rows.
func (e *Engine) Exec(query string, args ...any) (sql.Result, error) {
	return e.db.Exec(query, args...)
}

// Query runs a statement and returns its rows. The caller must close them.
func (e *Engine) Query(query string, args ...any) (*sql.Rows, error) {
	return e.db.Query(query, args...)
}

// QueryRow runs a statement expected to return at most one row.
func (e *Engine) QueryRow(query string, args ...any) *sql.Row {
	return e.db.QueryRow(query, args...)
}

// Begin starts a transaction.
func (e *Engine) Begin() (*sql.Tx, error) {
	return e.db.Begin()
}

// Export returns a snapshot of the whole database as a single file image.
// Every export serializes the entire store.
func (e *Engine) Export() ([]byte, error) {
	snap := filepath.Join(e.workDir, "snapshot-"+uuid.NewString()+".sqlite")
	defer os.Remove(snap)

	if _, err := e.db.Exec("VACUUM INTO " + quoteLiteral(snap)); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}
	data, err := os.ReadFile(snap)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	slog.Debug("Engine exported", "bytes", len(data))
	return data, nil
}

// Close closes the database and removes the working copy. Close is
// idempotent.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	if rmErr := os.RemoveAll(e.workDir); err == nil {
		err = rmErr
	}
	return err
}

// quoteLiteral renders s as an SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
