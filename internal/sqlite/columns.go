package sqlite

import (
	"database/sql"
	"strings"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// AddColumn appends a column to table tableID and returns its id. The new
// column's sort order is one past the table's current maximum, or 0 for the
// first column.
func (s *Store) AddColumn(tableID int64, label, datatype string) (int64, error) {
	res, err := s.engine.Exec(
		`INSERT INTO Columns (table_id, label, datatype, default_sort_order)
		 SELECT ?, ?, ?, COALESCE((SELECT MAX(default_sort_order) FROM Columns WHERE table_id = ?) + 1, 0)
		 WHERE EXISTS (SELECT 1 FROM Tables WHERE id = ?)`,
		tableID, label, datatype, tableID, tableID,
	)
	if err != nil {
		return 0, types.NewStoreError("add column", err)
	}
	id, err := insertedID(res)
	if err != nil {
		return 0, types.NewStoreError("add column", err)
	}
	return id, nil
}

// UpdateColumn applies the non-nil fields of u to column id.
func (s *Store) UpdateColumn(id int64, u types.ColumnUpdate) error {
	if u.Empty() {
		return nil
	}
	var sets []string
	var args []any
	if u.Label != nil {
		sets = append(sets, "label = ?")
		args = append(args, *u.Label)
	}
	if u.Datatype != nil {
		sets = append(sets, "datatype = ?")
		args = append(args, *u.Datatype)
	}
	args = append(args, id)

	res, err := s.engine.Exec("UPDATE Columns SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return types.NewStoreError("update column", err)
	}
	return types.NewStoreError("update column", mustAffect(res))
}

// DeleteColumn removes a column and its cells. Sibling sort orders are not
// renumbered.
func (s *Store) DeleteColumn(id int64) error {
	err := s.inTx(func(tx *sql.Tx) error {
		ok, err := existsTx(tx, "SELECT 1 FROM Columns WHERE id = ?", id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		if _, err := tx.Exec("DELETE FROM Cells WHERE column_id = ?", id); err != nil {
			return err
		}
		_, err = tx.Exec("DELETE FROM Columns WHERE id = ?", id)
		return err
	})
	return types.NewStoreError("delete column", err)
}

// SelectColumns returns the columns of table tableID ordered by sort order,
// then id.
func (s *Store) SelectColumns(tableID int64) ([]types.Column, error) {
	rows, err := s.engine.Query(
		`SELECT id, table_id, label, datatype, default_sort_order FROM Columns
		 WHERE table_id = ? ORDER BY default_sort_order ASC, id ASC`,
		tableID,
	)
	if err != nil {
		return nil, types.NewStoreError("select columns", err)
	}
	defer rows.Close()

	columns := []types.Column{}
	for rows.Next() {
		c, err := hydrateColumn(rows)
		if err != nil {
			return nil, types.NewStoreError("select columns", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select columns", err)
	}
	return columns, nil
}

// ReorderColumns sets each listed column's sort order to its index in ids.
// Columns not listed keep their sort order; pass the complete sibling set
// for a well-defined total order.
func (s *Store) ReorderColumns(ids []int64) error {
	return types.NewStoreError("reorder columns", s.reorder("Columns", ids))
}

func hydrateColumn(rows *sql.Rows) (types.Column, error) {
	var c types.Column
	err := rows.Scan(&c.ID, &c.TableID, &c.Label, &c.Datatype, &c.SortOrder)
	return c, err
}
