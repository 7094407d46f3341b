package sqlite

import (
	_ "embed"
	"fmt"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

//go:embed migrate.sql
var migrateSQL string

// currentSchemaVersion is the user_version recorded by migrate.sql.
const currentSchemaVersion = 1

// schemaTables lists every table the store needs, in dependency order.
var schemaTables = []string{
	"Tables",
	"Columns",
	"Rows",
	"Cells",
	"Enums",
	"EnumVariants",
}

// SetUpSchema applies the schema script. An empty script applies the
// embedded default. The default script is idempotent.
func (s *Store) SetUpSchema(script string) error {
	name := "schema"
	if script == "" {
		script = schemaSQL
	} else {
		name = "custom schema"
	}
	if _, err := s.engine.Exec(script); err != nil {
		return &types.SchemaError{Script: name, Err: err}
	}
	return nil
}

// Migrate applies the forward migration script. The schema must already be
// set up. Migrate is idempotent.
func (s *Store) Migrate() error {
	ok, err := s.HasSchema()
	if err != nil {
		return &types.SchemaError{Script: "migrate", Err: err}
	}
	if !ok {
		return &types.SchemaError{Script: "migrate", Err: types.ErrNoSchema}
	}
	if _, err := s.engine.Exec(migrateSQL); err != nil {
		return &types.SchemaError{Script: "migrate", Err: err}
	}
	return nil
}

// HasSchema reports whether every schema table exists.
func (s *Store) HasSchema() (bool, error) {
	var n int
	err := s.engine.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN (?, ?, ?, ?, ?, ?)`,
		schemaTables[0], schemaTables[1], schemaTables[2], schemaTables[3], schemaTables[4], schemaTables[5],
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking schema: %w", err)
	}
	return n == len(schemaTables), nil
}

// SchemaVersion returns the migration level recorded in the database.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	if err := s.engine.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return v, nil
}
