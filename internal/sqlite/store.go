package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// Store is the metadata store. It owns every durable read and write against
// the Engine and knows nothing about caches or callers.
//
// Every failed statement is returned as a *types.StoreError. The store does
// not retry, and a failed statement leaves the database as the engine left
// it. Multi-statement operations (cascading deletes, reorders) run in one
// transaction.
type Store struct {
	engine *Engine
}

// NewStore returns a Store over engine.
func NewStore(engine *Engine) *Store {
	return &Store{engine: engine}
}

// Engine returns the engine the store writes to.
func (s *Store) Engine() *Engine {
	return s.engine
}

// insertedID returns the id assigned by an INSERT ... SELECT ... WHERE
// statement, or ErrNotFound when the guard matched nothing.
func insertedID(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, types.ErrNotFound
	}
	return res.LastInsertId()
}

// mustAffect returns ErrNotFound when res changed no rows.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// existsTx reports whether query (a "SELECT 1 ... WHERE id = ?") matches.
func existsTx(tx *sql.Tx, query string, id int64) (bool, error) {
	var one int
	err := tx.QueryRow(query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// inTx runs fn in a transaction and commits when fn succeeds.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.engine.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// reorder assigns sort_order = index for each id, in one transaction. Ids
// missing from ids keep their sort_order; ids that do not exist are ignored.
func (s *Store) reorder(table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(fmt.Sprintf("UPDATE %s SET default_sort_order = ? WHERE id = ?", table))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, id := range ids {
			if _, err := stmt.Exec(i, id); err != nil {
				return fmt.Errorf("setting order of %d: %w", id, err)
			}
		}
		return nil
	})
}

// Export returns a snapshot of the whole store.
func (s *Store) Export() ([]byte, error) {
	data, err := s.engine.Export()
	if err != nil {
		return nil, &types.PersistenceError{Op: "export", Err: err}
	}
	return data, nil
}

// Save exports the store and writes the blob to path through fs. There is
// no incremental log: every save writes the entire store.
func (s *Store) Save(fs types.FileSystem, path string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}
	if err := fs.WriteBinary(path, data); err != nil {
		return &types.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Load opens the blob at path through fs. A missing blob yields a fresh,
// empty engine with no schema.
func Load(fs types.FileSystem, path string) (*Engine, error) {
	ok, err := fs.Exists(path)
	if err != nil {
		return nil, &types.PersistenceError{Op: "read", Path: path, Err: err}
	}
	if !ok {
		return OpenEngine(nil)
	}
	data, err := fs.ReadBinary(path)
	if err != nil {
		return nil, &types.PersistenceError{Op: "read", Path: path, Err: err}
	}
	engine, err := OpenEngine(data)
	if err != nil {
		return nil, &types.PersistenceError{Op: "read", Path: path, Err: err}
	}
	return engine, nil
}
