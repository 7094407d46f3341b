package cache

import (
	"sort"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// mirror is the in-memory copy of the store. Child slices are kept in the
// store's select order. The reverse indexes map child ids to their parent.
type mirror struct {
	tables         map[int64]types.Table
	columnsByTable map[int64][]types.Column
	rowsByTable    map[int64][]types.Row
	cellsByTable   map[int64]map[int64]map[int64]string // table -> row -> column -> value

	enums          map[int64]types.Enum
	variantsByEnum map[int64][]types.EnumVariant

	columnTable map[int64]int64
	rowTable    map[int64]int64
	variantEnum map[int64]int64
}

func newMirror() mirror {
	m := mirror{}
	m.resetTables()
	m.resetEnums()
	return m
}

func (m *mirror) resetTables() {
	m.tables = make(map[int64]types.Table)
	m.columnsByTable = make(map[int64][]types.Column)
	m.rowsByTable = make(map[int64][]types.Row)
	m.cellsByTable = make(map[int64]map[int64]map[int64]string)
	m.columnTable = make(map[int64]int64)
	m.rowTable = make(map[int64]int64)
}

func (m *mirror) resetEnums() {
	m.enums = make(map[int64]types.Enum)
	m.variantsByEnum = make(map[int64][]types.EnumVariant)
	m.variantEnum = make(map[int64]int64)
}

// tableSlice is one table's columns, rows, and cells as read from the store.
type tableSlice struct {
	columns []types.Column
	rows    []types.Row
	cells   map[int64]map[int64]string
}

// setTable replaces the mirrored slice of table id.
func (m *mirror) setTable(id int64, ts tableSlice) {
	for _, c := range m.columnsByTable[id] {
		delete(m.columnTable, c.ID)
	}
	for _, r := range m.rowsByTable[id] {
		delete(m.rowTable, r.ID)
	}
	m.columnsByTable[id] = ts.columns
	m.rowsByTable[id] = ts.rows
	m.cellsByTable[id] = ts.cells
	for _, c := range ts.columns {
		m.columnTable[c.ID] = id
	}
	for _, r := range ts.rows {
		m.rowTable[r.ID] = id
	}
}

// setVariants replaces the mirrored variants of enum id.
func (m *mirror) setVariants(id int64, variants []types.EnumVariant) {
	for _, v := range m.variantsByEnum[id] {
		delete(m.variantEnum, v.ID)
	}
	m.variantsByEnum[id] = variants
	for _, v := range variants {
		m.variantEnum[v.ID] = id
	}
}

// loadTableLocked reads one table's slice from the store.
func (c *Cache) loadTableLocked(id int64) (tableSlice, error) {
	columns, err := c.store.SelectColumns(id)
	if err != nil {
		return tableSlice{}, err
	}
	rows, err := c.store.SelectRows(id)
	if err != nil {
		return tableSlice{}, err
	}
	cells, err := c.store.SelectCells(id)
	if err != nil {
		return tableSlice{}, err
	}
	byRow := make(map[int64]map[int64]string, len(rows))
	for _, cell := range cells {
		if byRow[cell.RowID] == nil {
			byRow[cell.RowID] = make(map[int64]string)
		}
		byRow[cell.RowID][cell.ColumnID] = cell.Value
	}
	return tableSlice{columns: columns, rows: rows, cells: byRow}, nil
}

// refreshTablesLocked replaces the table side of the mirror. Everything is
// read before anything is swapped in, so a failure leaves the mirror as it
// was.
func (c *Cache) refreshTablesLocked() error {
	ok, err := c.store.HasSchema()
	if err != nil {
		return c.fail("refresh tables", types.NewStoreError("check schema", err))
	}
	next := newMirror()
	if ok {
		tables, err := c.store.SelectTables()
		if err != nil {
			return c.fail("refresh tables", err)
		}
		for _, t := range tables {
			ts, err := c.loadTableLocked(t.ID)
			if err != nil {
				return c.fail("refresh tables", err)
			}
			next.tables[t.ID] = t
			next.setTable(t.ID, ts)
		}
	}
	c.mirror.tables = next.tables
	c.mirror.columnsByTable = next.columnsByTable
	c.mirror.rowsByTable = next.rowsByTable
	c.mirror.cellsByTable = next.cellsByTable
	c.mirror.columnTable = next.columnTable
	c.mirror.rowTable = next.rowTable
	c.emit(Event{Kind: TablesRefreshed})
	c.logger.Debug("Refreshed tables", "count", len(next.tables))
	return nil
}

// refreshTableLocked replaces one table's columns, rows, and cells.
func (c *Cache) refreshTableLocked(id int64) error {
	ts, err := c.loadTableLocked(id)
	if err != nil {
		return c.fail("refresh table", err)
	}
	c.mirror.setTable(id, ts)
	c.emit(Event{Kind: TableRefreshed, TableID: id})
	c.logger.Debug("Refreshed table", "table", id, "columns", len(ts.columns), "rows", len(ts.rows))
	return nil
}

// refreshEnumsLocked replaces the enum side of the mirror.
func (c *Cache) refreshEnumsLocked() error {
	ok, err := c.store.HasSchema()
	if err != nil {
		return c.fail("refresh enums", types.NewStoreError("check schema", err))
	}
	next := newMirror()
	if ok {
		enums, err := c.store.SelectEnums()
		if err != nil {
			return c.fail("refresh enums", err)
		}
		for _, e := range enums {
			variants, err := c.store.SelectEnumVariants(e.ID)
			if err != nil {
				return c.fail("refresh enums", err)
			}
			next.enums[e.ID] = e
			next.setVariants(e.ID, variants)
		}
	}
	c.mirror.enums = next.enums
	c.mirror.variantsByEnum = next.variantsByEnum
	c.mirror.variantEnum = next.variantEnum
	c.emit(Event{Kind: EnumsRefreshed})
	c.logger.Debug("Refreshed enums", "count", len(next.enums))
	return nil
}

// refreshVariantsLocked replaces one enum's variants.
func (c *Cache) refreshVariantsLocked(enumID int64) error {
	variants, err := c.store.SelectEnumVariants(enumID)
	if err != nil {
		return c.fail("refresh enum variants", err)
	}
	c.mirror.setVariants(enumID, variants)
	c.emit(Event{Kind: VariantsRefreshed, EnumID: enumID})
	c.logger.Debug("Refreshed enum variants", "enum", enumID, "count", len(variants))
	return nil
}

// Tables returns the mirrored tables ordered by id.
func (c *Cache) Tables() []types.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Table, 0, len(c.mirror.tables))
	for _, t := range c.mirror.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Table returns the mirrored table with the given id.
func (c *Cache) Table(id int64) (types.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.mirror.tables[id]
	return t, ok
}

// Columns returns the mirrored columns of a table in sort order.
func (c *Cache) Columns(tableID int64) []types.Column {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Column{}, c.mirror.columnsByTable[tableID]...)
}

// Rows returns the mirrored rows of a table ordered by id.
func (c *Cache) Rows(tableID int64) []types.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Row{}, c.mirror.rowsByTable[tableID]...)
}

// Cells returns a copy of a table's cell values keyed by row id, then
// column id. Cells never written are absent.
func (c *Cache) Cells(tableID int64) map[int64]map[int64]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	src := c.mirror.cellsByTable[tableID]
	out := make(map[int64]map[int64]string, len(src))
	for rowID, byCol := range src {
		row := make(map[int64]string, len(byCol))
		for colID, v := range byCol {
			row[colID] = v
		}
		out[rowID] = row
	}
	return out
}

// Cell returns one mirrored cell value.
func (c *Cache) Cell(tableID, rowID, columnID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.mirror.cellsByTable[tableID][rowID][columnID]
	return v, ok
}

// Enums returns the mirrored enums ordered by id.
func (c *Cache) Enums() []types.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Enum, 0, len(c.mirror.enums))
	for _, e := range c.mirror.enums {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Enum returns the mirrored enum with the given id.
func (c *Cache) Enum(id int64) (types.Enum, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mirror.enums[id]
	return e, ok
}

// Variants returns the mirrored variants of an enum in sort order.
func (c *Cache) Variants(enumID int64) []types.EnumVariant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.EnumVariant{}, c.mirror.variantsByEnum[enumID]...)
}

// TableOfColumn returns the id of the table owning a mirrored column.
func (c *Cache) TableOfColumn(columnID int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.mirror.columnTable[columnID]
	return id, ok
}

// TableOfRow returns the id of the table owning a mirrored row.
func (c *Cache) TableOfRow(rowID int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.mirror.rowTable[rowID]
	return id, ok
}

// EnumOfVariant returns the id of the enum owning a mirrored variant.
func (c *Cache) EnumOfVariant(variantID int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.mirror.variantEnum[variantID]
	return id, ok
}
