package types

// Table is a user-defined table. The store does not enforce label uniqueness.
type Table struct {
	ID    int64  `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Column is an ordered, typed column of a Table.
type Column struct {
	ID        int64  `json:"id" yaml:"id"`
	TableID   int64  `json:"table_id" yaml:"table_id"`
	Label     string `json:"label" yaml:"label"`
	Datatype  string `json:"datatype" yaml:"datatype"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// Row is a row of a Table. Rows have no ordering beyond their ID.
type Row struct {
	ID      int64 `json:"id" yaml:"id"`
	TableID int64 `json:"table_id" yaml:"table_id"`
}

// Cell is the value at the intersection of a Row and a Column. At most one
// Cell exists per (RowID, ColumnID).
type Cell struct {
	RowID    int64  `json:"row_id" yaml:"row_id"`
	ColumnID int64  `json:"column_id" yaml:"column_id"`
	Value    string `json:"value" yaml:"value"`
}

// Enum is a top-level list of ordered variants that columns can reference
// as their datatype.
type Enum struct {
	ID    int64  `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// EnumVariant is one option of an Enum.
type EnumVariant struct {
	ID        int64  `json:"id" yaml:"id"`
	EnumID    int64  `json:"enum_id" yaml:"enum_id"`
	Label     string `json:"label" yaml:"label"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// TableUpdate lists the table fields to change. Nil fields are left untouched.
type TableUpdate struct {
	Label *string
}

// ColumnUpdate lists the column fields to change. Nil fields are left untouched.
type ColumnUpdate struct {
	Label    *string
	Datatype *string
}

// EnumUpdate lists the enum fields to change. Nil fields are left untouched.
type EnumUpdate struct {
	Label *string
}

// EnumVariantUpdate lists the variant fields to change. Nil fields are left
// untouched.
type EnumVariantUpdate struct {
	Label *string
}

// Empty reports whether the update changes nothing.
func (u TableUpdate) Empty() bool { return u.Label == nil }

// Empty reports whether the update changes nothing.
func (u ColumnUpdate) Empty() bool { return u.Label == nil && u.Datatype == nil }

// Empty reports whether the update changes nothing.
func (u EnumUpdate) Empty() bool { return u.Label == nil }

// Empty reports whether the update changes nothing.
func (u EnumVariantUpdate) Empty() bool { return u.Label == nil }

// Ptr returns a pointer to v. It is a convenience for building update structs.
func Ptr[T any](v T) *T {
	return &v
}
