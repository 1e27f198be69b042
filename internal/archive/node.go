// Package archive holds the archival description model shared by the store,
// the ancestor resolver and the report pipeline.
package archive

// Well-known taxonomy and object ids. The tree root is a synthetic node that
// every top-level description hangs off; it never appears in reports.
const (
	RootID                   int64 = 1
	LevelOfDescriptionTaxID  int64 = 34
	DefaultCulture                 = "en"
	PublicationStatusDraft         = "draft"
	PublicationStatusPublish       = "published"
)

// Level is a level-of-description term name as stored in the taxonomy.
type Level string

const (
	LevelFonds  Level = "fonds"
	LevelSeries Level = "series"
	LevelFile   Level = "file"
	LevelItem   Level = "item"
)

// Node is one archival description in the nested-set tree.
type Node struct {
	ID                   int64
	ParentID             int64 // 0 when the node is the tree root
	Lft                  int64
	Rgt                  int64
	LevelOfDescriptionID int64
	Identifier           string
	Slug                 string
	PublicationStatus    string
	SourceCulture        string
}

// HasParent reports whether the node hangs off another node.
func (n *Node) HasParent() bool {
	return n.ParentID != 0
}

// Contains reports whether other lies within n's bounds (inclusive).
func (n *Node) Contains(other *Node) bool {
	return other.Lft >= n.Lft && other.Rgt <= n.Rgt
}

// IsDraft reports whether the description is unpublished.
func (n *Node) IsDraft() bool {
	return n.PublicationStatus == PublicationStatusDraft
}

// CreationEvent is a creation event attached to a description.
// Date is the free-text rendered date; StartDate/EndDate are ISO strings where
// "-00" components mean unknown month or day.
type CreationEvent struct {
	ID        int64
	ObjectID  int64
	Date      string
	StartDate string
	EndDate   string
}

// HasDate reports whether the event carries any usable date.
func (e *CreationEvent) HasDate() bool {
	return e.Date != "" || e.StartDate != ""
}

// PhysicalObject is a storage container (box, folder, shelf) holding a description.
type PhysicalObject struct {
	ID       int64
	Label    string
	Location string
}

// TextField names a localizable column on a description.
type TextField string

const (
	FieldTitle            TextField = "title"
	FieldAccessConditions TextField = "access_conditions"
)

// Visibility is the caller's view of the tree. Anonymous actors never see drafts.
type Visibility struct {
	Authenticated bool
}

// IncludesDrafts reports whether draft descriptions pass the filter.
func (v Visibility) IncludesDrafts() bool {
	return v.Authenticated
}
