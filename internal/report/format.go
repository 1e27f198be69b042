package report

import (
	"io"

	"archreport/internal/archive"
)

// Format is a report serialization. The set is closed: CSV and HTML are
// the only values.
type Format interface {
	Name() string
	Extension() string
	write(doc *Document, w io.Writer) error
}

type csvFormat struct{}

func (csvFormat) Name() string      { return "csv" }
func (csvFormat) Extension() string { return "csv" }
func (csvFormat) write(doc *Document, w io.Writer) error {
	return WriteCSV(doc, w)
}

type htmlFormat struct{}

func (htmlFormat) Name() string      { return "html" }
func (htmlFormat) Extension() string { return "html" }
func (htmlFormat) write(doc *Document, w io.Writer) error {
	return WriteHTML(doc, w)
}

var (
	CSV  Format = csvFormat{}
	HTML Format = htmlFormat{}
)

// ParseFormat validates a requested report format. Names match exactly.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return CSV, nil
	case "html":
		return HTML, nil
	default:
		return nil, archive.E(archive.KindInvalidReportFormat, "reportFormat", "Invalid report format: %s", s)
	}
}
