package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// CreateTable inserts a table and returns its id.
func (s *Store) CreateTable(label string) (int64, error) {
	res, err := s.engine.Exec("INSERT INTO Tables (label) VALUES (?)", label)
	if err != nil {
		return 0, types.NewStoreError("create table", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, types.NewStoreError("create table", err)
	}
	return id, nil
}

// UpdateTable applies the non-nil fields of u to table id.
func (s *Store) UpdateTable(id int64, u types.TableUpdate) error {
	if u.Empty() {
		return nil
	}
	res, err := s.engine.Exec("UPDATE Tables SET label = ? WHERE id = ?", *u.Label, id)
	if err != nil {
		return types.NewStoreError("update table", err)
	}
	return types.NewStoreError("update table", mustAffect(res))
}

// DeleteTable removes a table together with its columns, rows, and cells.
func (s *Store) DeleteTable(id int64) error {
	err := s.inTx(func(tx *sql.Tx) error {
		ok, err := existsTx(tx, "SELECT 1 FROM Tables WHERE id = ?", id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		if _, err := tx.Exec(
			`DELETE FROM Cells
			 WHERE row_id IN (SELECT id FROM "Rows" WHERE table_id = ?)
			    OR column_id IN (SELECT id FROM Columns WHERE table_id = ?)`,
			id, id,
		); err != nil {
			return fmt.Errorf("deleting cells: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM "Rows" WHERE table_id = ?`, id); err != nil {
			return fmt.Errorf("deleting rows: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM Columns WHERE table_id = ?", id); err != nil {
			return fmt.Errorf("deleting columns: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM Tables WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting table: %w", err)
		}
		return nil
	})
	return types.NewStoreError("delete table", err)
}

// SelectTables returns every table ordered by id.
func (s *Store) SelectTables() ([]types.Table, error) {
	rows, err := s.engine.Query("SELECT id, label FROM Tables ORDER BY id ASC")
	if err != nil {
		return nil, types.NewStoreError("select tables", err)
	}
	defer rows.Close()

	tables := []types.Table{}
	for rows.Next() {
		var t types.Table
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, types.NewStoreError("select tables", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select tables", err)
	}
	return tables, nil
}
