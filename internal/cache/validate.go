package cache

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// cleanLabel trims surrounding white space and normalizes to NFC so that
// visually identical labels compare equal.
func cleanLabel(label string) (string, error) {
	l := norm.NFC.String(strings.TrimSpace(label))
	if l == "" {
		return "", types.ErrInvalidLabel
	}
	return l, nil
}

func cleanDatatype(datatype string) (string, error) {
	d := strings.TrimSpace(datatype)
	if d == "" {
		return "", types.ErrInvalidDatatype
	}
	return d, nil
}

func checkID(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	return nil
}

// precheck runs the local preconditions shared by every mutation. The
// caller must hold c.mu.
func (c *Cache) precheck(ids ...int64) error {
	if c.store == nil {
		return types.ErrDetached
	}
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return err
		}
	}
	return nil
}

// checkOwned reports ErrForeignID unless every id maps to parent in owners.
// Ids missing from owners are foreign too. The caller must hold c.mu.
func checkOwned(owners map[int64]int64, parent int64, ids []int64) error {
	for _, id := range ids {
		if owner, ok := owners[id]; !ok || owner != parent {
			return fmt.Errorf("%w: %d", types.ErrForeignID, id)
		}
	}
	return nil
}
