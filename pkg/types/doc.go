// Package types defines the entity types, partial-update structs, error
// taxonomy, configuration, and collaborator interfaces shared by the hoard
// metadata store, its reactive cache, and the CLI.
//
// Entities are user-defined tables (with ordered columns, rows, and cells)
// and enums (with ordered variants). All identifiers are assigned by the
// storage engine and never reused.
package types
