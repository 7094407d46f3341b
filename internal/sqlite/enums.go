package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// CreateEnum inserts an enum and returns its id.
func (s *Store) CreateEnum(label string) (int64, error) {
	res, err := s.engine.Exec("INSERT INTO Enums (label) VALUES (?)", label)
	if err != nil {
		return 0, types.NewStoreError("create enum", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, types.NewStoreError("create enum", err)
	}
	return id, nil
}

// UpdateEnum applies the non-nil fields of u to enum id.
func (s *Store) UpdateEnum(id int64, u types.EnumUpdate) error {
	if u.Empty() {
		return nil
	}
	res, err := s.engine.Exec("UPDATE Enums SET label = ? WHERE id = ?", *u.Label, id)
	if err != nil {
		return types.NewStoreError("update enum", err)
	}
	return types.NewStoreError("update enum", mustAffect(res))
}

// DeleteEnum removes an enum and its variants. Columns whose datatype
// references the enum are left as they are.
func (s *Store) DeleteEnum(id int64) error {
	err := s.inTx(func(tx *sql.Tx) error {
		ok, err := existsTx(tx, "SELECT 1 FROM Enums WHERE id = ?", id)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrNotFound
		}
		if _, err := tx.Exec("DELETE FROM EnumVariants WHERE enum_id = ?", id); err != nil {
			return err
		}
		_, err = tx.Exec("DELETE FROM Enums WHERE id = ?", id)
		return err
	})
	return types.NewStoreError("delete enum", err)
}

// SelectEnums returns every enum ordered by id.
func (s *Store) SelectEnums() ([]types.Enum, error) {
	rows, err := s.engine.Query("SELECT id, label FROM Enums ORDER BY id ASC")
	if err != nil {
		return nil, types.NewStoreError("select enums", err)
	}
	defer rows.Close()

	enums := []types.Enum{}
	for rows.Next() {
		var e types.Enum
		if err := rows.Scan(&e.ID, &e.Label); err != nil {
			return nil, types.NewStoreError("select enums", err)
		}
		enums = append(enums, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("select enums", err)
	}
	return enums, nil
}
