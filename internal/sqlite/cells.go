package sqlite

import (
	"github.com/mesh-intelligence/hoard/pkg/types"
)

// UpdateCell writes value for (rowID, columnID). Writing an existing cell
// replaces its value; there is never more than one cell per pair. The row
// and column must exist and belong to the same table.
func (s *Store) UpdateCell(rowID, columnID int64, value string) error {
	res, err := s.engine.Exec(
		`INSERT INTO Cells (row_id, column_id, value)
		 SELECT ?, ?, ?
		 WHERE EXISTS (
		     SELECT 1 FROM "Rows" r JOIN Columns c ON c.table_id = r.table_id
		     WHERE r.id = ? AND c.id = ?
		 )
		 ON CONFLICT (row_id, column_id) DO UPDATE SET value = excluded.value`,
		rowID, columnID, value, rowID, columnID,
	)
	if err != nil {
		return types.NewStoreError("update cell", err)
	}
	return types.NewStoreError("update cell", mustAffect(res))
}

// SelectCells returns every cell of table tableID ordered by row, then
// column.
func (s *Store) SelectCells(tableID int64) ([]types.Cell, error) {
	rows, err := s.engine.Query(
		`SELECT c.row_id, c.column_id, c.value FROM Cells c
		 JOIN "Rows" r ON r.id = c.row_id
		 WHERE r.table_id = ?
		 ORDER BY c.row_id ASC, c.column_id ASC`,
		tableID,
	)
	if err != nil {
		return nil, types.NewStoreError("select cells", err)
	}
	defer rows.Close()

	cells := []types.Cell{}
	for rows.Next() {
		var c types.Cell
		if err := rows.Scan(&c.RowID, &c.ColumnID, &c.Value); err != nil {
			return nil, types.NewStoreError("select cells", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select cells", err)
	}
	return cells, nil
}
