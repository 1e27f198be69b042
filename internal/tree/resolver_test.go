package tree

import (
	"context"
	"errors"
	"testing"

	"archreport/internal/archive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	nodes    map[int64]*archive.Node
	events   map[int64][]archive.CreationEvent
	objects  map[int64][]archive.PhysicalObject
	finds    int
	ancestor int
}

func newFakeSource(nodes ...*archive.Node) *fakeSource {
	f := &fakeSource{
		nodes:   make(map[int64]*archive.Node),
		events:  make(map[int64][]archive.CreationEvent),
		objects: make(map[int64][]archive.PhysicalObject),
	}
	for _, n := range nodes {
		f.nodes[n.ID] = n
	}
	return f
}

func (f *fakeSource) FindByID(_ context.Context, id int64) (*archive.Node, error) {
	f.finds++
	n, ok := f.nodes[id]
	if !ok {
		return nil, archive.E(archive.KindNotFound, "fake", "no %d", id)
	}
	return n, nil
}

func (f *fakeSource) AncestorsOf(_ context.Context, n *archive.Node) ([]*archive.Node, error) {
	f.ancestor++
	var chain []*archive.Node
	for cur := n; cur.HasParent(); {
		p := f.nodes[cur.ParentID]
		chain = append([]*archive.Node{p}, chain...)
		cur = p
	}
	return chain, nil
}

func (f *fakeSource) CreationEvents(_ context.Context, id int64, _ string) ([]archive.CreationEvent, error) {
	return f.events[id], nil
}

func (f *fakeSource) PhysicalObjects(_ context.Context, id int64) ([]archive.PhysicalObject, error) {
	return f.objects[id], nil
}

func (f *fakeSource) CountNodes(context.Context) (int, error) {
	return len(f.nodes), nil
}

// root(1) → fonds(2) → series(3) → item(4)
func chain() (*fakeSource, map[string]*archive.Node) {
	n := map[string]*archive.Node{
		"root":   {ID: 1, Lft: 1, Rgt: 8},
		"fonds":  {ID: 2, ParentID: 1, Lft: 2, Rgt: 7},
		"series": {ID: 3, ParentID: 2, Lft: 3, Rgt: 6},
		"item":   {ID: 4, ParentID: 3, Lft: 4, Rgt: 5},
	}
	return newFakeSource(n["root"], n["fonds"], n["series"], n["item"]), n
}

func newResolver(t *testing.T, src Source) *Resolver {
	t.Helper()
	r, err := NewResolver(context.Background(), src, "en")
	require.NoError(t, err)
	return r
}

func TestEffectiveCreationDate_InheritsFromParent(t *testing.T) {
	src, n := chain()
	src.events[3] = []archive.CreationEvent{{ID: 30, Date: "1920-1930"}}
	r := newResolver(t, src)

	ev, err := r.EffectiveCreationDate(context.Background(), n["item"])
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, int64(30), ev.ID)
}

func TestEffectiveCreationDate_OwnEventWins(t *testing.T) {
	src, n := chain()
	src.events[2] = []archive.CreationEvent{{ID: 20, Date: "1900"}}
	src.events[4] = []archive.CreationEvent{{ID: 40, StartDate: "1925-01-01"}}
	r := newResolver(t, src)

	ev, err := r.EffectiveCreationDate(context.Background(), n["item"])
	require.NoError(t, err)
	assert.Equal(t, int64(40), ev.ID)
}

func TestEffectiveCreationDate_SkipsUndatedEvents(t *testing.T) {
	src, n := chain()
	src.events[4] = []archive.CreationEvent{{ID: 41}, {ID: 42, EndDate: "1930"}}
	src.events[3] = []archive.CreationEvent{{ID: 31}, {ID: 32, Date: "ca. 1920"}}
	r := newResolver(t, src)

	ev, err := r.EffectiveCreationDate(context.Background(), n["item"])
	require.NoError(t, err)
	assert.Equal(t, int64(32), ev.ID)
}

func TestEffectiveCreationDate_AbsentAtRoot(t *testing.T) {
	src, n := chain()
	r := newResolver(t, src)

	ev, err := r.EffectiveCreationDate(context.Background(), n["root"])
	require.NoError(t, err)
	assert.Nil(t, ev)

	ev, err = r.EffectiveCreationDate(context.Background(), n["item"])
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestLocationString(t *testing.T) {
	src, n := chain()
	src.objects[4] = []archive.PhysicalObject{{Label: "A"}, {Label: "B"}, {Label: "C"}}
	src.objects[3] = []archive.PhysicalObject{{Label: "Series box"}}
	r := newResolver(t, src)

	loc, err := r.LocationString(context.Background(), n["item"])
	require.NoError(t, err)
	assert.Equal(t, "A; B; C", loc)

	loc, err = r.LocationString(context.Background(), n["fonds"])
	require.NoError(t, err)
	assert.Equal(t, "", loc, "locations are not inherited")
}

func TestTopLevel(t *testing.T) {
	src, n := chain()
	r := newResolver(t, src)
	ctx := context.Background()

	for _, name := range []string{"item", "series", "fonds"} {
		top, err := r.TopLevel(ctx, n[name])
		require.NoError(t, err)
		assert.Equal(t, int64(2), top.ID, name)
	}

	top, err := r.TopLevel(ctx, n["root"])
	require.NoError(t, err)
	assert.Equal(t, int64(1), top.ID)
}

func TestAncestors_RootToNodeWithoutTreeRoot(t *testing.T) {
	src, n := chain()
	r := newResolver(t, src)

	ancestors, err := r.Ancestors(context.Background(), n["item"])
	require.NoError(t, err)
	ids := make([]int64, 0, len(ancestors))
	for _, a := range ancestors {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)

	ancestors, err = r.Ancestors(context.Background(), n["fonds"])
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestPreload_AvoidsPerStepLookups(t *testing.T) {
	src, n := chain()
	r := newResolver(t, src)
	ctx := context.Background()

	require.NoError(t, r.Preload(ctx, n["item"]))
	assert.Equal(t, 4, r.Arena().Len())

	_, err := r.Ancestors(ctx, n["item"])
	require.NoError(t, err)
	_, err = r.TopLevel(ctx, n["item"])
	require.NoError(t, err)
	assert.Equal(t, 0, src.finds)
	assert.Equal(t, 1, src.ancestor)
}

func TestWalk_CorruptTreeCycle(t *testing.T) {
	a := &archive.Node{ID: 10, ParentID: 11}
	b := &archive.Node{ID: 11, ParentID: 10}
	src := newFakeSource(a, b)
	r := newResolver(t, src)

	_, err := r.EffectiveCreationDate(context.Background(), a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, archive.ErrCorruptTree))

	_, err = r.TopLevel(context.Background(), a)
	assert.True(t, errors.Is(err, archive.ErrCorruptTree))
}

func TestWalk_MissingParentIsNotFound(t *testing.T) {
	orphan := &archive.Node{ID: 5, ParentID: 99}
	r := newResolver(t, newFakeSource(orphan))

	_, err := r.Ancestors(context.Background(), orphan)
	assert.True(t, errors.Is(err, archive.ErrNotFound))
}
