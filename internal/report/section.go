package report

import "archreport/internal/archive"

// Columns are the serialized row fields, in output order.
var Columns = []string{"referenceCode", "title", "dates", "startDate", "accessConditions", "locations"}

// Row is one matching description in a report.
type Row struct {
	Node             *archive.Node
	ReferenceCode    string
	Title            string
	Dates            string
	StartDate        string
	AccessConditions string
	Locations        string

	// Hierarchy holds the titles of the row's ancestors, root to node,
	// without the tree root.
	Hierarchy []string
	Thumbnail string
}

// Values returns the serialized fields in Columns order.
func (r *Row) Values() []string {
	return []string{r.ReferenceCode, r.Title, r.Dates, r.StartDate, r.AccessConditions, r.Locations}
}

// Group is the rows that share one top-level ancestor.
type Group struct {
	TopLevel *archive.Node
	Rows     []*Row
}

// Hierarchy is the ancestor trail printed above the group: that of its first row.
func (g *Group) Hierarchy() []string {
	if len(g.Rows) == 0 {
		return nil
	}
	return g.Rows[0].Hierarchy
}

// Section maps top-level ancestor ids to groups, keeping first-insertion order.
type Section struct {
	keys   []int64
	groups map[int64]*Group
}

// NewSection returns an empty section.
func NewSection() *Section {
	return &Section{groups: make(map[int64]*Group)}
}

// Add appends row to the group of top, creating the group on first use.
func (s *Section) Add(top *archive.Node, row *Row) {
	g, ok := s.groups[top.ID]
	if !ok {
		g = &Group{TopLevel: top}
		s.groups[top.ID] = g
		s.keys = append(s.keys, top.ID)
	}
	g.Rows = append(g.Rows, row)
}

// Groups returns the groups in insertion order.
func (s *Section) Groups() []*Group {
	out := make([]*Group, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.groups[k])
	}
	return out
}

// Len returns the number of groups.
func (s *Section) Len() int {
	return len(s.keys)
}

// RowCount returns the number of rows across all groups.
func (s *Section) RowCount() int {
	n := 0
	for _, g := range s.groups {
		n += len(g.Rows)
	}
	return n
}

// Empty reports whether there is nothing to write.
func (s *Section) Empty() bool {
	return s == nil || len(s.keys) == 0
}

// Sort orders every group's rows by field. Groups keep their order.
func (s *Section) Sort(field SortField) {
	for _, g := range s.groups {
		SortRows(g.Rows, field)
	}
}
