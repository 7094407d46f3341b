package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// RenderTable writes td as an aligned text grid: a title line, a header of
// column labels, then one line per row. The first column is the row id.
func RenderTable(w io.Writer, td TableDoc) error {
	if _, err := fmt.Fprintf(w, "%s (table %d)\n", td.Label, td.ID); err != nil {
		return err
	}
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	header := []string{"#"}
	for _, c := range td.Columns {
		header = append(header, oneLine(c.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range td.Rows {
		line := []string{fmt.Sprint(r.ID)}
		for _, c := range td.Columns {
			line = append(line, oneLine(r.Cells[c.ID]))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writeTrimmed(w, buf.Bytes())
}

// RenderEnum writes an enum label followed by its variants, one per line.
func RenderEnum(w io.Writer, ed EnumDoc) error {
	if _, err := fmt.Fprintf(w, "%s (enum %d)\n", ed.Label, ed.ID); err != nil {
		return err
	}
	for _, v := range ed.Variants {
		if _, err := fmt.Fprintf(w, "  %d  %s\n", v.ID, oneLine(v.Label)); err != nil {
			return err
		}
	}
	return nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}

// writeTrimmed drops the padding tabwriter leaves after the last non-empty
// cell of each line.
func writeTrimmed(w io.Writer, data []byte) error {
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		trimmed := strings.TrimRight(line, " \n")
		if _, err := io.WriteString(w, trimmed+"\n"); err != nil {
			return err
		}
	}
	return nil
}
