package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hoard/internal/hostfs"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

// newTestStore opens a fresh engine with the schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	engine, err := OpenEngine(nil)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	s := NewStore(engine)
	require.NoError(t, s.SetUpSchema(""))
	return s
}

func TestStore_BooksScenario(t *testing.T) {
	s := newTestStore(t)

	tableID, err := s.CreateTable("Books")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tableID)

	titleID, err := s.AddColumn(tableID, "Title", "text")
	require.NoError(t, err)
	assert.Equal(t, int64(1), titleID)

	yearID, err := s.AddColumn(tableID, "Year", "number")
	require.NoError(t, err)
	assert.Equal(t, int64(2), yearID)

	rowID, err := s.AddRow(tableID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowID)

	require.NoError(t, s.UpdateCell(rowID, titleID, "Dune"))
	require.NoError(t, s.UpdateCell(rowID, yearID, "1965"))

	columns, err := s.SelectColumns(tableID)
	require.NoError(t, err)
	assert.Equal(t, []types.Column{
		{ID: 1, TableID: 1, Label: "Title", Datatype: "text", SortOrder: 0},
		{ID: 2, TableID: 1, Label: "Year", Datatype: "number", SortOrder: 1},
	}, columns)

	cells, err := s.SelectCells(tableID)
	require.NoError(t, err)
	assert.Equal(t, []types.Cell{
		{RowID: 1, ColumnID: 1, Value: "Dune"},
		{RowID: 1, ColumnID: 2, Value: "1965"},
	}, cells)
}

func TestStore_ColumnIDsNeverReused(t *testing.T) {
	s := newTestStore(t)
	tableID, err := s.CreateTable("t")
	require.NoError(t, err)

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.AddColumn(tableID, "c", "text")
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id

		// Deleting the newest column must not free its id.
		if i%2 == 0 {
			require.NoError(t, s.DeleteColumn(id))
		}
	}
}

func TestStore_ColumnSortOrder(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store, tableID int64)
	}{
		{
			name: "first column gets 0 and next gets max plus one",
			check: func(t *testing.T, s *Store, tableID int64) {
				_, err := s.AddColumn(tableID, "a", "text")
				require.NoError(t, err)
				_, err = s.AddColumn(tableID, "b", "text")
				require.NoError(t, err)

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				require.Len(t, cols, 2)
				assert.Equal(t, 0, cols[0].SortOrder)
				assert.Equal(t, 1, cols[1].SortOrder)
			},
		},
		{
			name: "delete does not renumber siblings",
			check: func(t *testing.T, s *Store, tableID int64) {
				a, _ := s.AddColumn(tableID, "a", "text")
				b, _ := s.AddColumn(tableID, "b", "text")
				_, _ = s.AddColumn(tableID, "c", "text")
				require.NoError(t, s.DeleteColumn(b))

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				require.Len(t, cols, 2)
				assert.Equal(t, a, cols[0].ID)
				assert.Equal(t, 0, cols[0].SortOrder)
				assert.Equal(t, 2, cols[1].SortOrder)

				d, err := s.AddColumn(tableID, "d", "text")
				require.NoError(t, err)
				cols, err = s.SelectColumns(tableID)
				require.NoError(t, err)
				assert.Equal(t, d, cols[2].ID)
				assert.Equal(t, 3, cols[2].SortOrder)
			},
		},
		{
			name: "sort order is scoped to the table",
			check: func(t *testing.T, s *Store, tableID int64) {
				_, _ = s.AddColumn(tableID, "a", "text")
				_, _ = s.AddColumn(tableID, "b", "text")

				other, err := s.CreateTable("other")
				require.NoError(t, err)
				_, err = s.AddColumn(other, "x", "text")
				require.NoError(t, err)

				cols, err := s.SelectColumns(other)
				require.NoError(t, err)
				require.Len(t, cols, 1)
				assert.Equal(t, 0, cols[0].SortOrder)
			},
		},
		{
			name: "reorder yields the requested order",
			check: func(t *testing.T, s *Store, tableID int64) {
				c1, _ := s.AddColumn(tableID, "c1", "text")
				c2, _ := s.AddColumn(tableID, "c2", "text")
				c3, _ := s.AddColumn(tableID, "c3", "text")
				require.NoError(t, s.ReorderColumns([]int64{c3, c1, c2}))

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				assert.Equal(t, []int64{c3, c1, c2}, columnIDs(cols))
			},
		},
		{
			name: "partial reorder leaves unlisted columns untouched",
			check: func(t *testing.T, s *Store, tableID int64) {
				c1, _ := s.AddColumn(tableID, "c1", "text")
				c2, _ := s.AddColumn(tableID, "c2", "text")
				c3, _ := s.AddColumn(tableID, "c3", "text")
				require.NoError(t, s.ReorderColumns([]int64{c2, c1}))

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				// c2=0, c1=1, c3 keeps 2.
				assert.Equal(t, []int64{c2, c1, c3}, columnIDs(cols))
				assert.Equal(t, 2, cols[2].SortOrder)
			},
		},
		{
			name: "ties on sort order break by id",
			check: func(t *testing.T, s *Store, tableID int64) {
				c1, _ := s.AddColumn(tableID, "c1", "text")
				c2, _ := s.AddColumn(tableID, "c2", "text")
				// Both columns end up with sort order 0.
				require.NoError(t, s.ReorderColumns([]int64{c2}))
				require.NoError(t, s.ReorderColumns([]int64{c1}))

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				assert.Equal(t, []int64{c1, c2}, columnIDs(cols))
			},
		},
		{
			name: "reorder ignores unknown ids",
			check: func(t *testing.T, s *Store, tableID int64) {
				c1, _ := s.AddColumn(tableID, "c1", "text")
				require.NoError(t, s.ReorderColumns([]int64{999, c1}))

				cols, err := s.SelectColumns(tableID)
				require.NoError(t, err)
				require.Len(t, cols, 1)
				assert.Equal(t, 1, cols[0].SortOrder)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			tableID, err := s.CreateTable("t")
			require.NoError(t, err)
			tt.check(t, s, tableID)
		})
	}
}

func TestStore_UpdateCellUpserts(t *testing.T) {
	s := newTestStore(t)
	tableID, _ := s.CreateTable("t")
	col, _ := s.AddColumn(tableID, "c", "text")
	row, _ := s.AddRow(tableID)

	require.NoError(t, s.UpdateCell(row, col, "v1"))
	require.NoError(t, s.UpdateCell(row, col, "v2"))

	cells, err := s.SelectCells(tableID)
	require.NoError(t, err)
	assert.Equal(t, []types.Cell{{RowID: row, ColumnID: col, Value: "v2"}}, cells)
}

func TestStore_UpdateCellRequiresRowAndColumnOfSameTable(t *testing.T) {
	s := newTestStore(t)
	t1, _ := s.CreateTable("t1")
	t2, _ := s.CreateTable("t2")
	col1, _ := s.AddColumn(t1, "c", "text")
	row2, _ := s.AddRow(t2)
	row1, _ := s.AddRow(t1)

	tests := []struct {
		name     string
		row, col int64
	}{
		{name: "missing row", row: 999, col: col1},
		{name: "missing column", row: row1, col: 999},
		{name: "row and column of different tables", row: row2, col: col1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpdateCell(tt.row, tt.col, "x")
			assert.True(t, types.IsStoreError(err))
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}

	cells, err := s.SelectCells(t1)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestStore_DeleteTableCascades(t *testing.T) {
	s := newTestStore(t)
	books, _ := s.CreateTable("Books")
	keep, _ := s.CreateTable("Keep")

	col, _ := s.AddColumn(books, "Title", "text")
	row, _ := s.AddRow(books)
	require.NoError(t, s.UpdateCell(row, col, "Dune"))

	keepCol, _ := s.AddColumn(keep, "Name", "text")
	keepRow, _ := s.AddRow(keep)
	require.NoError(t, s.UpdateCell(keepRow, keepCol, "kept"))

	require.NoError(t, s.DeleteTable(books))

	cols, err := s.SelectColumns(books)
	require.NoError(t, err)
	assert.Empty(t, cols)
	rows, err := s.SelectRows(books)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var orphans int
	require.NoError(t, s.Engine().QueryRow("SELECT COUNT(*) FROM Cells WHERE row_id = ?", row).Scan(&orphans))
	assert.Zero(t, orphans)

	tables, err := s.SelectTables()
	require.NoError(t, err)
	assert.Equal(t, []types.Table{{ID: keep, Label: "Keep"}}, tables)

	cells, err := s.SelectCells(keep)
	require.NoError(t, err)
	assert.Len(t, cells, 1)
}

func TestStore_DeleteRowAndColumnRemoveCells(t *testing.T) {
	s := newTestStore(t)
	tableID, _ := s.CreateTable("t")
	c1, _ := s.AddColumn(tableID, "c1", "text")
	c2, _ := s.AddColumn(tableID, "c2", "text")
	r1, _ := s.AddRow(tableID)
	r2, _ := s.AddRow(tableID)
	for _, r := range []int64{r1, r2} {
		for _, c := range []int64{c1, c2} {
			require.NoError(t, s.UpdateCell(r, c, "x"))
		}
	}

	require.NoError(t, s.DeleteRow(r1))
	require.NoError(t, s.DeleteColumn(c2))

	cells, err := s.SelectCells(tableID)
	require.NoError(t, err)
	assert.Equal(t, []types.Cell{{RowID: r2, ColumnID: c1, Value: "x"}}, cells)

	var total int
	require.NoError(t, s.Engine().QueryRow("SELECT COUNT(*) FROM Cells").Scan(&total))
	assert.Equal(t, 1, total)
}

func TestStore_PartialUpdates(t *testing.T) {
	s := newTestStore(t)
	tableID, _ := s.CreateTable("t")
	col, _ := s.AddColumn(tableID, "Title", "text")

	require.NoError(t, s.UpdateColumn(col, types.ColumnUpdate{Datatype: types.Ptr("number")}))
	cols, err := s.SelectColumns(tableID)
	require.NoError(t, err)
	assert.Equal(t, "Title", cols[0].Label)
	assert.Equal(t, "number", cols[0].Datatype)

	require.NoError(t, s.UpdateColumn(col, types.ColumnUpdate{Label: types.Ptr("Name")}))
	cols, err = s.SelectColumns(tableID)
	require.NoError(t, err)
	assert.Equal(t, "Name", cols[0].Label)
	assert.Equal(t, "number", cols[0].Datatype)

	// An empty update issues no statement, even for a missing id.
	assert.NoError(t, s.UpdateColumn(999, types.ColumnUpdate{}))
	assert.NoError(t, s.UpdateTable(999, types.TableUpdate{}))

	require.NoError(t, s.UpdateTable(tableID, types.TableUpdate{Label: types.Ptr("Renamed")}))
	tables, err := s.SelectTables()
	require.NoError(t, err)
	assert.Equal(t, "Renamed", tables[0].Label)
}

func TestStore_MissingEntities(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"update table", func() error { return s.UpdateTable(42, types.TableUpdate{Label: types.Ptr("x")}) }},
		{"delete table", func() error { return s.DeleteTable(42) }},
		{"add column", func() error { _, err := s.AddColumn(42, "c", "text"); return err }},
		{"update column", func() error { return s.UpdateColumn(42, types.ColumnUpdate{Label: types.Ptr("x")}) }},
		{"delete column", func() error { return s.DeleteColumn(42) }},
		{"add row", func() error { _, err := s.AddRow(42); return err }},
		{"delete row", func() error { return s.DeleteRow(42) }},
		{"update enum", func() error { return s.UpdateEnum(42, types.EnumUpdate{Label: types.Ptr("x")}) }},
		{"delete enum", func() error { return s.DeleteEnum(42) }},
		{"add enum variant", func() error { _, err := s.AddEnumVariant(42, "v"); return err }},
		{"update enum variant", func() error {
			return s.UpdateEnumVariant(42, types.EnumVariantUpdate{Label: types.Ptr("x")})
		}},
		{"delete enum variant", func() error { return s.DeleteEnumVariant(42) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			var se *types.StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.name, se.Op)
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}

func TestStore_Enums(t *testing.T) {
	s := newTestStore(t)

	status, err := s.CreateEnum("Status")
	require.NoError(t, err)
	other, err := s.CreateEnum("Other")
	require.NoError(t, err)

	todo, err := s.AddEnumVariant(status, "todo")
	require.NoError(t, err)
	doing, err := s.AddEnumVariant(status, "doing")
	require.NoError(t, err)
	done, err := s.AddEnumVariant(status, "done")
	require.NoError(t, err)
	_, err = s.AddEnumVariant(other, "x")
	require.NoError(t, err)

	variants, err := s.SelectEnumVariants(status)
	require.NoError(t, err)
	assert.Equal(t, []types.EnumVariant{
		{ID: todo, EnumID: status, Label: "todo", SortOrder: 0},
		{ID: doing, EnumID: status, Label: "doing", SortOrder: 1},
		{ID: done, EnumID: status, Label: "done", SortOrder: 2},
	}, variants)

	require.NoError(t, s.ReorderEnumVariants([]int64{done, todo, doing}))
	variants, err = s.SelectEnumVariants(status)
	require.NoError(t, err)
	assert.Equal(t, []int64{done, todo, doing}, variantIDs(variants))

	require.NoError(t, s.UpdateEnumVariant(doing, types.EnumVariantUpdate{Label: types.Ptr("in progress")}))
	require.NoError(t, s.DeleteEnumVariant(todo))
	variants, err = s.SelectEnumVariants(status)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "in progress", variants[1].Label)

	require.NoError(t, s.UpdateEnum(status, types.EnumUpdate{Label: types.Ptr("State")}))
	require.NoError(t, s.DeleteEnum(other))

	enums, err := s.SelectEnums()
	require.NoError(t, err)
	assert.Equal(t, []types.Enum{{ID: status, Label: "State"}}, enums)

	variants, err = s.SelectEnumVariants(other)
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestStore_EnumDatatypeIsNotValidated(t *testing.T) {
	s := newTestStore(t)
	tableID, _ := s.CreateTable("t")

	// Enum 77 does not exist; the reference is a convention only.
	col, err := s.AddColumn(tableID, "Status", types.EnumDatatype(77))
	require.NoError(t, err)

	cols, err := s.SelectColumns(tableID)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, col, cols[0].ID)
	id, ok := types.EnumRef(cols[0].Datatype)
	assert.True(t, ok)
	assert.Equal(t, int64(77), id)
}

func TestStore_SelectsReturnEmptySlices(t *testing.T) {
	s := newTestStore(t)

	tables, err := s.SelectTables()
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)

	enums, err := s.SelectEnums()
	require.NoError(t, err)
	assert.NotNil(t, enums)

	cells, err := s.SelectCells(1)
	require.NoError(t, err)
	assert.NotNil(t, cells)
}

func TestStore_SaveAndReload(t *testing.T) {
	fs, err := hostfs.New(t.TempDir())
	require.NoError(t, err)
	const path = ".datahoarder/db.sqlite"

	s := newTestStore(t)
	books, _ := s.CreateTable("Books")
	_, _ = s.CreateTable("Films")
	col, _ := s.AddColumn(books, "Title", "text")
	row, _ := s.AddRow(books)
	require.NoError(t, s.UpdateCell(row, col, "Dune"))
	before, err := s.SelectTables()
	require.NoError(t, err)

	require.NoError(t, s.Save(fs, path))

	engine, err := Load(fs, path)
	require.NoError(t, err)
	defer engine.Close()
	reloaded := NewStore(engine)

	after, err := reloaded.SelectTables()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	cells, err := reloaded.SelectCells(books)
	require.NoError(t, err)
	assert.Equal(t, []types.Cell{{RowID: row, ColumnID: col, Value: "Dune"}}, cells)

	// Ids keep increasing after a reload.
	next, err := reloaded.CreateTable("Music")
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
}

func TestLoad_MissingBlobYieldsFreshEngine(t *testing.T) {
	fs, err := hostfs.New(t.TempDir())
	require.NoError(t, err)

	engine, err := Load(fs, "db.sqlite")
	require.NoError(t, err)
	defer engine.Close()

	ok, err := NewStore(engine).HasSchema()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_CorruptBlob(t *testing.T) {
	fs, err := hostfs.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fs.WriteBinary("db.sqlite", []byte("this is not a sqlite database, just some text padding it out")))

	_, err = Load(fs, "db.sqlite")
	require.Error(t, err)
	assert.True(t, types.IsPersistenceError(err))
}

func columnIDs(cols []types.Column) []int64 {
	ids := make([]int64, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

func variantIDs(vs []types.EnumVariant) []int64 {
	ids := make([]int64, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
	}
	return ids
}
