package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"archreport/internal/archive"
	"archreport/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refs = ReferenceCodeOptions{Inherit: true, Separator: "-"}

func newFixtureStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.DefaultDriver, filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	f, err := os.Open(filepath.Join("..", "store", "testdata", "fonds.yaml"))
	require.NoError(t, err)
	defer f.Close()
	_, err = s.ImportFixture(context.Background(), f)
	require.NoError(t, err)
	return s
}

func findSlug(t *testing.T, s *store.Store, slug string) *archive.Node {
	t.Helper()
	n, err := s.FindBySlug(context.Background(), slug)
	require.NoError(t, err)
	return n
}

// rowView drops the node pointer so rows compare by value.
type rowView struct {
	ReferenceCode, Title, Dates, StartDate, AccessConditions, Locations string
}

func views(rows []*Row) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowView{r.ReferenceCode, r.Title, r.Dates, r.StartDate, r.AccessConditions, r.Locations})
	}
	return out
}

func TestCollect_ItemsFromTreeRoot(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	root, err := s.FindByID(ctx, archive.RootID)
	require.NoError(t, err)

	c := NewCollector(s, "en", refs)
	section, err := c.Collect(ctx, root, archive.LevelItem, Options{Visibility: archive.Visibility{Authenticated: true}})
	require.NoError(t, err)

	groups := section.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "alpha-fonds", groups[0].TopLevel.Slug)
	assert.Equal(t, "beta-fonds", groups[1].TopLevel.Slug)

	want := []rowView{
		{"ABC-S1-F1-10", "item10", "1901-03", "1901-03-00", "Restricted", "Box 1; Folder 7; Map drawer 2"},
		{"ABC-S1-F1-2", "Item2", "1900-1950", "1900-00-00", "", ""},
		{"ABC-S1-F1-1", "item1", "1900-1950", "1900-00-00", "", ""},
		{"ABC-S2-P1", "Harbour", "ca. 1920", "", "", ""},
	}
	if diff := cmp.Diff(want, views(groups[0].Rows)); diff != "" {
		t.Errorf("alpha rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Alpha Fonds", "Correspondence", "Letters 1900"}, groups[0].Hierarchy())

	require.Len(t, groups[1].Rows, 1)
	assert.Equal(t, "BET-B1", groups[1].Rows[0].ReferenceCode)
	assert.Empty(t, groups[1].Rows[0].Dates, "no date anywhere up the chain")
}

func TestCollect_AnonymousSkipsDrafts(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	c := NewCollector(s, "en", refs)

	section, err := c.Collect(ctx, findSlug(t, s, "alpha-fonds"), archive.LevelItem, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, section.Len())
	assert.Equal(t, []string{"item10", "Item2", "Harbour"}, titles(section.Groups()[0].Rows))

	files, err := c.Collect(ctx, findSlug(t, s, "alpha-fonds"), archive.LevelFile, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, files.RowCount(), "draft file hidden")
}

func TestCollect_StaysInsideRootBounds(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	c := NewCollector(s, "en", refs)

	root := findSlug(t, s, "photographs")
	section, err := c.Collect(ctx, root, archive.LevelItem, Options{Visibility: archive.Visibility{Authenticated: true}})
	require.NoError(t, err)

	require.Equal(t, 1, section.RowCount())
	g := section.Groups()[0]
	assert.Equal(t, "alpha-fonds", g.TopLevel.Slug, "grouping walks up past the query root")
	for _, r := range g.Rows {
		assert.True(t, root.Contains(r.Node) || root.ID == r.Node.ID)
	}
}

func TestCollect_RootIncludedWhenItMatches(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	c := NewCollector(s, "en", refs)

	item := findSlug(t, s, "item10")
	section, err := c.Collect(ctx, item, archive.LevelItem, Options{IncludeThumbnails: true})
	require.NoError(t, err)
	require.Equal(t, 1, section.RowCount())
	row := section.Groups()[0].Rows[0]
	assert.Equal(t, item.ID, row.Node.ID)
	assert.Equal(t, "uploads/item10_142.jpg", row.Thumbnail)
}

func TestCollect_NoMatchesIsEmpty(t *testing.T) {
	s := newFixtureStore(t)
	c := NewCollector(s, "en", refs)

	section, err := c.Collect(context.Background(), findSlug(t, s, "beta-fonds"), archive.LevelFile, Options{})
	require.NoError(t, err)
	assert.True(t, section.Empty())
}

func TestCollect_UnknownLevelIsNotFound(t *testing.T) {
	s := newFixtureStore(t)
	c := NewCollector(s, "en", refs)

	_, err := c.Collect(context.Background(), findSlug(t, s, "alpha-fonds"), archive.Level("box"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, archive.ErrNotFound))
	assert.Contains(t, err.Error(), "can't find 'box' level of description")
}

func TestCollect_FrenchFallsBackToSourceCulture(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	c := NewCollector(s, "fr", refs)

	section, err := c.Collect(ctx, findSlug(t, s, "alpha-fonds"), archive.LevelItem, Options{})
	require.NoError(t, err)
	g := section.Groups()[0]
	assert.Equal(t, "Fonds Alpha", g.Hierarchy()[0])
	assert.Equal(t, "item10", g.Rows[0].Title)
	assert.Equal(t, "1900 à 1950", g.Rows[1].Dates)
}

// strayRepo returns one extra description outside the queried subtree.
type strayRepo struct {
	*store.Store
	stray *archive.Node
}

func (r strayRepo) QueryDescendantsInclusive(ctx context.Context, root *archive.Node, vis archive.Visibility) ([]*archive.Node, error) {
	nodes, err := r.Store.QueryDescendantsInclusive(ctx, root, vis)
	return append(nodes, r.stray), err
}

func TestCollect_NodeOutsideSubtreeIsCorruptTree(t *testing.T) {
	s := newFixtureStore(t)
	ctx := context.Background()
	repo := strayRepo{Store: s, stray: findSlug(t, s, "beta-item")}
	c := NewCollector(repo, "en", refs)

	_, err := c.Collect(ctx, findSlug(t, s, "alpha-fonds"), archive.LevelItem, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, archive.ErrCorruptTree))
	assert.Contains(t, err.Error(), "outside subtree")
}
