package report

import (
	"encoding/csv"
	"io"
)

// WriteCSV streams the grouped rows of doc to w. Each group opens with the
// hierarchy of its first row, a "---" separator and the column header.
func WriteCSV(doc *Document, w io.Writer) error {
	if doc.Empty() {
		return nil
	}
	cw := csv.NewWriter(w)
	for _, g := range doc.Section.Groups() {
		if err := cw.Write([]string{doc.Labels.Hierarchy}); err != nil {
			return err
		}
		for _, title := range g.Hierarchy() {
			if err := cw.Write([]string{title}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"---"}); err != nil {
			return err
		}
		if err := cw.Write(Columns); err != nil {
			return err
		}
		for _, r := range g.Rows {
			if err := cw.Write(r.Values()); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
