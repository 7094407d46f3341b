// Package export renders the cache mirror as a document (JSON or YAML), as
// a JSON Schema describing that document, and as a plain-text grid.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// Source is the read side of the cache.
type Source interface {
	Tables() []types.Table
	Columns(tableID int64) []types.Column
	Rows(tableID int64) []types.Row
	Cells(tableID int64) map[int64]map[int64]string
	Enums() []types.Enum
	Variants(enumID int64) []types.EnumVariant
}

// Document is a full snapshot of the vault's tables and enums.
type Document struct {
	Tables []TableDoc `json:"tables" yaml:"tables" jsonschema:"description=User tables in id order"`
	Enums  []EnumDoc  `json:"enums" yaml:"enums" jsonschema:"description=Enums in id order"`
}

// TableDoc is one table with its columns and rows.
type TableDoc struct {
	ID      int64          `json:"id" yaml:"id"`
	Label   string         `json:"label" yaml:"label"`
	Columns []types.Column `json:"columns" yaml:"columns" jsonschema:"description=Columns in display order"`
	Rows    []RowDoc       `json:"rows" yaml:"rows"`
}

// RowDoc is one row. Cells maps column ids to values; columns never
// written are absent.
type RowDoc struct {
	ID    int64            `json:"id" yaml:"id"`
	Cells map[int64]string `json:"cells" yaml:"cells"`
}

// EnumDoc is one enum with its variants.
type EnumDoc struct {
	ID       int64               `json:"id" yaml:"id"`
	Label    string              `json:"label" yaml:"label"`
	Variants []types.EnumVariant `json:"variants" yaml:"variants" jsonschema:"description=Variants in display order"`
}

// Build snapshots every table and enum of src.
func Build(src Source) Document {
	doc := Document{Tables: []TableDoc{}, Enums: []EnumDoc{}}
	for _, t := range src.Tables() {
		doc.Tables = append(doc.Tables, buildTable(src, t))
	}
	for _, e := range src.Enums() {
		variants := src.Variants(e.ID)
		if variants == nil {
			variants = []types.EnumVariant{}
		}
		doc.Enums = append(doc.Enums, EnumDoc{ID: e.ID, Label: e.Label, Variants: variants})
	}
	return doc
}

// BuildTable snapshots a single table. It reports false when src has no
// table with that id.
func BuildTable(src Source, tableID int64) (TableDoc, bool) {
	for _, t := range src.Tables() {
		if t.ID == tableID {
			return buildTable(src, t), true
		}
	}
	return TableDoc{}, false
}

func buildTable(src Source, t types.Table) TableDoc {
	cells := src.Cells(t.ID)
	rows := src.Rows(t.ID)
	columns := src.Columns(t.ID)
	if columns == nil {
		columns = []types.Column{}
	}
	td := TableDoc{
		ID:      t.ID,
		Label:   t.Label,
		Columns: columns,
		Rows:    make([]RowDoc, 0, len(rows)),
	}
	for _, r := range rows {
		values := cells[r.ID]
		if values == nil {
			values = map[int64]string{}
		}
		td.Rows = append(td.Rows, RowDoc{ID: r.ID, Cells: values})
	}
	return td
}

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// Write encodes v to w in the given format.
func Write(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Schema returns the JSON Schema of Document with every definition
// inlined.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.Reflect(&Document{})
	return json.MarshalIndent(s, "", "  ")
}
