package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// AddEnumVariant appends a variant to enum enumID and returns its id. Sort
// order follows the same rule as columns, scoped to the enum.
func (s *Store) AddEnumVariant(enumID int64, label string) (int64, error) {
	res, err := s.engine.Exec(
		`INSERT INTO EnumVariants (enum_id, label, default_sort_order)
		 SELECT ?, ?, COALESCE((SELECT MAX(default_sort_order) FROM EnumVariants WHERE enum_id = ?) + 1, 0)
		 WHERE EXISTS (SELECT 1 FROM Enums WHERE id = ?)`,
		enumID, label, enumID, enumID,
	)
	if err != nil {
		return 0, types.NewStoreError("add enum variant", err)
	}
	id, err := insertedID(res)
	if err != nil {
		return 0, types.NewStoreError("add enum variant", err)
	}
	return id, nil
}

// UpdateEnumVariant applies the non-nil fields of u to variant id.
func (s *Store) UpdateEnumVariant(id int64, u types.EnumVariantUpdate) error {
	if u.Empty() {
		return nil
	}
	res, err := s.engine.Exec("UPDATE EnumVariants SET label = ? WHERE id = ?", *u.Label, id)
	if err != nil {
		return types.NewStoreError("update enum variant", err)
	}
	return types.NewStoreError("update enum variant", mustAffect(res))
}

// DeleteEnumVariant removes a variant. Sibling sort orders are not
// renumbered.
func (s *Store) DeleteEnumVariant(id int64) error {
	res, err := s.engine.Exec("DELETE FROM EnumVariants WHERE id = ?", id)
	if err != nil {
		return types.NewStoreError("delete enum variant", err)
	}
	return types.NewStoreError("delete enum variant", mustAffect(res))
}

// SelectEnumVariants returns the variants of enum enumID ordered by sort
// order, then id.
func (s *Store) SelectEnumVariants(enumID int64) ([]types.EnumVariant, error) {
	rows, err := s.engine.Query(
		`SELECT id, enum_id, label, default_sort_order FROM EnumVariants
		 WHERE enum_id = ? ORDER BY default_sort_order ASC, id ASC`,
		enumID,
	)
	if err != nil {
		return nil, types.NewStoreError("select enum variants", err)
	}
	defer rows.Close()

	variants := []types.EnumVariant{}
	for rows.Next() {
		v, err := hydrateVariant(rows)
		if err != nil {
			return nil, types.NewStoreError("select enum variants", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select enum variants", err)
	}
	return variants, nil
}

// ReorderEnumVariants sets each listed variant's sort order to its index in
// ids. Variants not listed keep their sort order.
func (s *Store) ReorderEnumVariants(ids []int64) error {
	return types.NewStoreError("reorder enum variants", s.reorder("EnumVariants", ids))
}

func hydrateVariant(rows *sql.Rows) (types.EnumVariant, error) {
	var v types.EnumVariant
	err := rows.Scan(&v.ID, &v.EnumID, &v.Label, &v.SortOrder)
	return v, err
}
