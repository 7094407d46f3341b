package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// AddRow appends a row to table tableID and returns its id.
func (s *Store) AddRow(tableID int64) (int64, error) {
	res, err := s.engine.Exec(
		`INSERT INTO "Rows" (table_id) SELECT ? WHERE EXISTS (SELECT 1 FROM Tables WHERE id = ?)`,
		tableID, tableID,
	)
	if err != nil {
		return 0, types.NewStoreError("add row", err)
	}
	id, err := insertedID(res)
	if err != nil {
		return 0, types.NewStoreError("add row", err)
	}
	return id, nil
}

// DeleteRow removes a row and its cells.
func (s *Store) DeleteRow(id int64) error {
	err := s.inTx(func(tx *sql.Tx) error {
		ok, err := existsTx(tx, `SELECT 1 FROM "Rows" WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		if _, err := tx.Exec("DELETE FROM Cells WHERE row_id = ?", id); err != nil {
			return err
		}
		_, err = tx.Exec(`DELETE FROM "Rows" WHERE id = ?`, id)
		return err
	})
	return types.NewStoreError("delete row", err)
}

// SelectRows returns the rows of table tableID ordered by id.
func (s *Store) SelectRows(tableID int64) ([]types.Row, error) {
	rows, err := s.engine.Query(`SELECT id, table_id FROM "Rows" WHERE table_id = ? ORDER BY id ASC`, tableID)
	if err != nil {
		return nil, types.NewStoreError("select rows", err)
	}
	defer rows.Close()

	result := []types.Row{}
	for rows.Next() {
		var r types.Row
		if err := rows.Scan(&r.ID, &r.TableID); err != nil {
			return nil, types.NewStoreError("select rows", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select rows", err)
	}
	return result, nil
}
