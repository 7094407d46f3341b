package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known column datatypes. Datatype is free text; these are the values
// the CLI offers and renders specially.
const (
	DatatypeText     = "text"
	DatatypeNumber   = "number"
	DatatypeDate     = "date"
	DatatypeCheckbox = "checkbox"
)

// enumDatatypePrefix marks a datatype that references an Enum by ID.
const enumDatatypePrefix = "enum:"

// StandardDatatypes lists the well-known datatypes for help output.
var StandardDatatypes = []string{
	DatatypeText,
	DatatypeNumber,
	DatatypeDate,
	DatatypeCheckbox,
}

// EnumDatatype returns the datatype string that references the enum with
// the given ID.
func EnumDatatype(enumID int64) string {
	return fmt.Sprintf("%s%d", enumDatatypePrefix, enumID)
}

// EnumRef parses a datatype of the form "enum:<id>". The reference is a
// convention only: the store never checks that the enum exists.
func EnumRef(datatype string) (int64, bool) {
	rest, ok := strings.CutPrefix(datatype, enumDatatypePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
