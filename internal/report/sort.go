package report

import (
	"sort"
	"strings"

	"archreport/internal/archive"

	"github.com/maruel/natural"
)

// SortField selects the row field groups are ordered by.
type SortField string

const (
	SortReferenceCode SortField = "referenceCode"
	SortTitle         SortField = "title"
	SortStartDate     SortField = "startDate"
	SortLocations     SortField = "locations"
)

// DefaultSort is used when no sort field is given.
const DefaultSort = SortReferenceCode

// ParseSortField validates a user-supplied sort field. Locations (retrieval
// information) are only offered to authenticated actors.
func ParseSortField(s string, authenticated bool) (SortField, error) {
	switch SortField(s) {
	case "":
		return DefaultSort, nil
	case SortReferenceCode, SortTitle, SortStartDate:
		return SortField(s), nil
	case SortLocations:
		if authenticated {
			return SortLocations, nil
		}
		return "", archive.E(archive.KindInvalidParameter, "sortBy",
			"sorting by locations requires an authenticated user")
	default:
		return "", archive.E(archive.KindInvalidParameter, "sortBy", "invalid sort field: %s", s)
	}
}

// Value returns the row's value for the field; unknown fields read as "".
func (f SortField) Value(r *Row) string {
	switch f {
	case SortReferenceCode:
		return r.ReferenceCode
	case SortTitle:
		return r.Title
	case SortStartDate:
		return r.StartDate
	case SortLocations:
		return r.Locations
	default:
		return ""
	}
}

// SortRows orders rows in place by field using a stable, natural,
// case-insensitive comparison ("item1" < "Item2" < "item10").
func SortRows(rows []*Row, field SortField) {
	keys := make(map[*Row]string, len(rows))
	for _, r := range rows {
		keys[r] = strings.ToLower(field.Value(r))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return natural.Less(keys[rows[i]], keys[rows[j]])
	})
}
