package report

import (
	"time"

	"archreport/internal/archive"
)

// Document is everything a serializer needs for one report.
type Document struct {
	Resource          *archive.Node
	ResourceTitle     string
	Type              Type
	Section           *Section
	Labels            Labels
	Authenticated     bool
	IncludeThumbnails bool
	GeneratedAt       time.Time
}

// Empty reports whether the document has no rows to write.
func (d *Document) Empty() bool {
	return d == nil || d.Section.Empty()
}
