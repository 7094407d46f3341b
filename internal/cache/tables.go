package cache

import "github.com/mesh-intelligence/hoard/pkg/types"

// CreateTable creates a table and resyncs every table. It returns the new
// id, or 0 when the call was rejected locally.
func (c *Cache) CreateTable(label string) (int64, error) {
	var id int64
	err := c.do(func() error {
		const op = "create table"
		if err := c.precheck(); err != nil {
			return c.reject(op, err)
		}
		clean, err := cleanLabel(label)
		if err != nil {
			return c.reject(op, err)
		}
		id, err = c.store.CreateTable(clean)
		if err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		c.notifier.Notice("Table created")
		return c.refreshTablesLocked()
	})
	return id, err
}

// UpdateTable applies the non-nil fields of u. An empty update is a no-op.
func (c *Cache) UpdateTable(id int64, u types.TableUpdate) error {
	return c.do(func() error {
		const op = "update table"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		if u.Label != nil {
			clean, err := cleanLabel(*u.Label)
			if err != nil {
				return c.reject(op, err)
			}
			u.Label = &clean
		}
		if u.Empty() {
			return nil
		}
		if err := c.store.UpdateTable(id, u); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshTablesLocked()
	})
}

// DeleteTable deletes a table with its columns, rows, and cells.
func (c *Cache) DeleteTable(id int64) error {
	return c.do(func() error {
		const op = "delete table"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		if err := c.store.DeleteTable(id); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		c.notifier.Notice("Table deleted")
		return c.refreshTablesLocked()
	})
}

// AddColumn appends a column to a table and refreshes that table.
func (c *Cache) AddColumn(tableID int64, label, datatype string) (int64, error) {
	var id int64
	err := c.do(func() error {
		const op = "add column"
		if err := c.precheck(tableID); err != nil {
			return c.reject(op, err)
		}
		clean, err := cleanLabel(label)
		if err != nil {
			return c.reject(op, err)
		}
		dt, err := cleanDatatype(datatype)
		if err != nil {
			return c.reject(op, err)
		}
		id, err = c.store.AddColumn(tableID, clean, dt)
		if err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshTableLocked(tableID)
	})
	return id, err
}

// UpdateColumn applies the non-nil fields of u. An empty update is a no-op.
func (c *Cache) UpdateColumn(id int64, u types.ColumnUpdate) error {
	return c.do(func() error {
		const op = "update column"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		if u.Label != nil {
			clean, err := cleanLabel(*u.Label)
			if err != nil {
				return c.reject(op, err)
			}
			u.Label = &clean
		}
		if u.Datatype != nil {
			dt, err := cleanDatatype(*u.Datatype)
			if err != nil {
				return c.reject(op, err)
			}
			u.Datatype = &dt
		}
		if u.Empty() {
			return nil
		}
		if err := c.store.UpdateColumn(id, u); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshOwnerLocked(c.mirror.columnTable, id)
	})
}

// DeleteColumn deletes a column and its cells.
func (c *Cache) DeleteColumn(id int64) error {
	return c.do(func() error {
		const op = "delete column"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		tableID, known := c.mirror.columnTable[id]
		if err := c.store.DeleteColumn(id); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		if !known {
			return c.refreshTablesLocked()
		}
		return c.refreshTableLocked(tableID)
	})
}

// ReorderColumns sets each listed column's sort order to its index in ids.
// Columns not listed keep their sort order. Ids that are not columns of
// tableID reject the whole call.
func (c *Cache) ReorderColumns(tableID int64, ids []int64) error {
	return c.do(func() error {
		const op = "reorder columns"
		if err := c.precheck(tableID); err != nil {
			return c.reject(op, err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := checkOwned(c.mirror.columnTable, tableID, ids); err != nil {
			return c.reject(op, err)
		}
		if err := c.store.ReorderColumns(ids); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshTableLocked(tableID)
	})
}

// AddRow appends an empty row to a table.
func (c *Cache) AddRow(tableID int64) (int64, error) {
	var id int64
	err := c.do(func() error {
		const op = "add row"
		if err := c.precheck(tableID); err != nil {
			return c.reject(op, err)
		}
		var err error
		id, err = c.store.AddRow(tableID)
		if err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshTableLocked(tableID)
	})
	return id, err
}

// DeleteRow deletes a row and its cells.
func (c *Cache) DeleteRow(id int64) error {
	return c.do(func() error {
		const op = "delete row"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		tableID, known := c.mirror.rowTable[id]
		if err := c.store.DeleteRow(id); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		if !known {
			return c.refreshTablesLocked()
		}
		return c.refreshTableLocked(tableID)
	})
}

// UpdateCell writes a cell value. On success the single mirrored value is
// patched in place; the rest of the mirror is not re-read.
func (c *Cache) UpdateCell(rowID, columnID int64, value string) error {
	return c.do(func() error {
		const op = "update cell"
		if err := c.precheck(rowID, columnID); err != nil {
			return c.reject(op, err)
		}
		if err := c.store.UpdateCell(rowID, columnID, value); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		tableID, known := c.mirror.rowTable[rowID]
		if !known {
			return c.refreshTablesLocked()
		}
		byRow := c.mirror.cellsByTable[tableID]
		if byRow == nil {
			byRow = make(map[int64]map[int64]string)
			c.mirror.cellsByTable[tableID] = byRow
		}
		if byRow[rowID] == nil {
			byRow[rowID] = make(map[int64]string)
		}
		byRow[rowID][columnID] = value
		c.emit(Event{Kind: CellUpdated, TableID: tableID, RowID: rowID, ColumnID: columnID})
		return nil
	})
}

// refreshOwnerLocked refreshes the table owning child according to index,
// or every table when the owner is not mirrored.
func (c *Cache) refreshOwnerLocked(index map[int64]int64, child int64) error {
	tableID, ok := index[child]
	if !ok {
		return c.refreshTablesLocked()
	}
	return c.refreshTableLocked(tableID)
}
