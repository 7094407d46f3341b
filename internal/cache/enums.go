package cache

import "github.com/mesh-intelligence/hoard/pkg/types"

// CreateEnum creates an enum and resyncs every enum.
func (c *Cache) CreateEnum(label string) (int64, error) {
	var id int64
	err := c.do(func() error {
		const op = "create enum"
		if err := c.precheck(); err != nil {
			return c.reject(op, err)
		}
		clean, err := cleanLabel(label)
		if err != nil {
			return c.reject(op, err)
		}
		id, err = c.store.CreateEnum(clean)
		if err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		c.notifier.Notice("Enum created")
		return c.refreshEnumsLocked()
	})
	return id, err
}

// UpdateEnum applies the non-nil fields of u. An empty update is a no-op.
func (c *Cache) UpdateEnum(id int64, u types.EnumUpdate) error {
	return c.do(func() error {
		const op = "update enum"
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
		if err := c.store.UpdateEnum(id, u); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshEnumsLocked()
	})
}

// DeleteEnum deletes an enum and its variants. Columns whose datatype
// refers to the enum are left as they are.
func (c *Cache) DeleteEnum(id int64) error {
	return c.do(func() error {
		const op = "delete enum"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		if err := c.store.DeleteEnum(id); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		c.notifier.Notice("Enum deleted")
		return c.refreshEnumsLocked()
	})
}

// AddEnumVariant appends a variant to an enum and refreshes its variants.
func (c *Cache) AddEnumVariant(enumID int64, label string) (int64, error) {
	var id int64
	err := c.do(func() error {
		const op = "add enum variant"
		if err := c.precheck(enumID); err != nil {
			return c.reject(op, err)
		}
		clean, err := cleanLabel(label)
		if err != nil {
			return c.reject(op, err)
		}
		id, err = c.store.AddEnumVariant(enumID, clean)
		if err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshVariantsLocked(enumID)
	})
	return id, err
}

// UpdateEnumVariant applies the non-nil fields of u. An empty update is a
// no-op.
func (c *Cache) UpdateEnumVariant(id int64, u types.EnumVariantUpdate) error {
	return c.do(func() error {
		const op = "update enum variant"
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
		if err := c.store.UpdateEnumVariant(id, u); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshEnumOfLocked(id)
	})
}

// DeleteEnumVariant deletes a single variant.
func (c *Cache) DeleteEnumVariant(id int64) error {
	return c.do(func() error {
		const op = "delete enum variant"
		if err := c.precheck(id); err != nil {
			return c.reject(op, err)
		}
		enumID, known := c.mirror.variantEnum[id]
		if err := c.store.DeleteEnumVariant(id); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		if !known {
			return c.refreshEnumsLocked()
		}
		return c.refreshVariantsLocked(enumID)
	})
}

// ReorderEnumVariants sets each listed variant's sort order to its index
// in ids. Variants not listed keep their sort order. Ids that are not
// variants of enumID reject the whole call.
func (c *Cache) ReorderEnumVariants(enumID int64, ids []int64) error {
	return c.do(func() error {
		const op = "reorder enum variants"
		if err := c.precheck(enumID); err != nil {
			return c.reject(op, err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := checkOwned(c.mirror.variantEnum, enumID, ids); err != nil {
			return c.reject(op, err)
		}
		if err := c.store.ReorderEnumVariants(ids); err != nil {
			return c.fail(op, err)
		}
		c.markModified()
		return c.refreshVariantsLocked(enumID)
	})
}

func (c *Cache) refreshEnumOfLocked(variantID int64) error {
	enumID, ok := c.mirror.variantEnum[variantID]
	if !ok {
		return c.refreshEnumsLocked()
	}
	return c.refreshVariantsLocked(enumID)
}
