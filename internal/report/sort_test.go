package report

import (
	"errors"
	"testing"

	"archreport/internal/archive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(rows []*Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Title)
	}
	return out
}

func TestSortRows_NaturalCaseInsensitive(t *testing.T) {
	rows := []*Row{{Title: "item10"}, {Title: "Item2"}, {Title: "item1"}}
	SortRows(rows, SortTitle)
	assert.Equal(t, []string{"item1", "Item2", "item10"}, titles(rows))
}

func TestSortRows_OrderIndependentOfInput(t *testing.T) {
	a := []*Row{{ReferenceCode: "F-10", Title: "a"}, {ReferenceCode: "F-9", Title: "b"}, {ReferenceCode: "f-1", Title: "c"}}
	b := []*Row{a[1], a[2], a[0]}
	SortRows(a, SortReferenceCode)
	SortRows(b, SortReferenceCode)
	assert.Equal(t, []string{"c", "b", "a"}, titles(a))
	assert.Equal(t, titles(a), titles(b))
}

func TestSortRows_StableOnEqualKeys(t *testing.T) {
	rows := []*Row{
		{Title: "first", StartDate: ""},
		{Title: "second", StartDate: "1901"},
		{Title: "third", StartDate: ""},
	}
	SortRows(rows, SortStartDate)
	assert.Equal(t, []string{"first", "third", "second"}, titles(rows))
}

func TestSortRows_UnknownFieldKeepsOrder(t *testing.T) {
	rows := []*Row{{Title: "b"}, {Title: "a"}}
	assert.NotPanics(t, func() { SortRows(rows, SortField("bogus")) })
	assert.Equal(t, []string{"b", "a"}, titles(rows))
}

func TestSection_SortIsPerGroup(t *testing.T) {
	alpha := &archive.Node{ID: 2}
	beta := &archive.Node{ID: 11}
	s := NewSection()
	s.Add(beta, &Row{Title: "z"})
	s.Add(alpha, &Row{Title: "b"})
	s.Add(beta, &Row{Title: "a"})
	s.Add(alpha, &Row{Title: "a"})

	s.Sort(SortTitle)

	groups := s.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, int64(11), groups[0].TopLevel.ID)
	assert.Equal(t, []string{"a", "z"}, titles(groups[0].Rows))
	assert.Equal(t, []string{"a", "b"}, titles(groups[1].Rows))
	assert.Equal(t, 4, s.RowCount())
}

func TestParseSortField(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		authenticated bool
		want          SortField
		wantErr       bool
	}{
		{"default", "", false, SortReferenceCode, false},
		{"title", "title", false, SortTitle, false},
		{"start date", "startDate", false, SortStartDate, false},
		{"locations authenticated", "locations", true, SortLocations, false},
		{"locations anonymous", "locations", false, "", true},
		{"unknown", "size", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortField(tt.in, tt.authenticated)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, archive.ErrInvalidParameter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
