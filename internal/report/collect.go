// Package report collects item and file lists from the description tree,
// sorts them and serializes them as CSV or HTML.
package report

import (
	"context"
	"time"

	"archreport/internal/archive"
	"archreport/internal/logging"
	"archreport/internal/tree"
)

// Repository is everything the collector reads.
type Repository interface {
	tree.Source
	QueryDescendantsInclusive(ctx context.Context, root *archive.Node, vis archive.Visibility) ([]*archive.Node, error)
	ResolveClassifier(ctx context.Context, name string, taxonomyID int64, culture string) (int64, error)
	Text(ctx context.Context, n *archive.Node, field archive.TextField, culture string, fallback bool) (string, error)
	Thumbnail(ctx context.Context, objectID int64) (string, error)
}

// Options tunes one collection.
type Options struct {
	Visibility        archive.Visibility
	IncludeThumbnails bool
}

// Collector builds report sections. It holds no per-run state and is safe
// for concurrent use.
type Collector struct {
	repo    Repository
	culture string
	refs    ReferenceCodeOptions
}

// NewCollector returns a collector reading repo in the given culture.
func NewCollector(repo Repository, culture string, refs ReferenceCodeOptions) *Collector {
	if culture == "" {
		culture = archive.DefaultCulture
	}
	return &Collector{repo: repo, culture: culture, refs: refs}
}

// Culture is the operating culture.
func (c *Collector) Culture() string {
	return c.culture
}

// Collect gathers every description at level inside root's subtree (root
// included) and groups the rows by top-level ancestor in traversal order.
// An unresolvable level is a NotFound failure; no matches is an empty section.
func (c *Collector) Collect(ctx context.Context, root *archive.Node, level archive.Level, opts Options) (*Section, error) {
	timer := logging.StartTimer(logging.CategoryCollect, "Collect")
	defer timer.StopWithThreshold(5 * time.Second)

	// Level keys are the English term names whatever the display culture.
	classID, err := c.repo.ResolveClassifier(ctx, string(level), archive.LevelOfDescriptionTaxID, archive.DefaultCulture)
	if err != nil {
		return nil, err
	}

	nodes, err := c.repo.QueryDescendantsInclusive(ctx, root, opts.Visibility)
	if err != nil {
		return nil, err
	}

	resolver, err := tree.NewResolver(ctx, c.repo, c.culture)
	if err != nil {
		return nil, err
	}
	resolver.Arena().Put(nodes...)
	if err := resolver.Preload(ctx, root); err != nil {
		return nil, err
	}

	r := &run{Collector: c, resolver: resolver, opts: opts, titles: make(map[int64]string)}
	section := NewSection()
	for _, n := range nodes {
		if !root.Contains(n) {
			return nil, archive.E(archive.KindCorruptTree, "report.Collect",
				"description %d [%d,%d] lies outside subtree of %d [%d,%d]", n.ID, n.Lft, n.Rgt, root.ID, root.Lft, root.Rgt)
		}
		if n.LevelOfDescriptionID != classID {
			continue
		}
		top, err := resolver.TopLevel(ctx, n)
		if err != nil {
			return nil, err
		}
		row, err := r.row(ctx, n)
		if err != nil {
			return nil, err
		}
		section.Add(top, row)
	}

	logging.Collect("Collected %d %s rows in %d groups under %d (%d descriptions scanned)",
		section.RowCount(), level, section.Len(), root.ID, len(nodes))
	return section, nil
}

// Title returns the localized title of n with culture fallback.
func (c *Collector) Title(ctx context.Context, n *archive.Node) (string, error) {
	return c.repo.Text(ctx, n, archive.FieldTitle, c.culture, true)
}

// run carries the state of one Collect call.
type run struct {
	*Collector
	resolver *tree.Resolver
	opts     Options
	titles   map[int64]string
}

func (r *run) title(ctx context.Context, n *archive.Node) (string, error) {
	if t, ok := r.titles[n.ID]; ok {
		return t, nil
	}
	t, err := r.Title(ctx, n)
	if err != nil {
		return "", err
	}
	r.titles[n.ID] = t
	return t, nil
}

func (r *run) row(ctx context.Context, n *archive.Node) (*Row, error) {
	ancestors, err := r.resolver.Ancestors(ctx, n)
	if err != nil {
		return nil, err
	}
	hierarchy := make([]string, 0, len(ancestors))
	for _, a := range ancestors {
		t, err := r.title(ctx, a)
		if err != nil {
			return nil, err
		}
		hierarchy = append(hierarchy, t)
	}

	event, err := r.resolver.EffectiveCreationDate(ctx, n)
	if err != nil {
		return nil, err
	}
	dates, start := renderEvent(event)

	locations, err := r.resolver.LocationString(ctx, n)
	if err != nil {
		return nil, err
	}

	title, err := r.title(ctx, n)
	if err != nil {
		return nil, err
	}
	access, err := r.repo.Text(ctx, n, archive.FieldAccessConditions, r.culture, true)
	if err != nil {
		return nil, err
	}

	row := &Row{
		Node:             n,
		ReferenceCode:    r.refs.ReferenceCode(n, ancestors),
		Title:            title,
		Dates:            dates,
		StartDate:        start,
		AccessConditions: access,
		Locations:        locations,
		Hierarchy:        hierarchy,
	}

	if r.opts.IncludeThumbnails {
		if row.Thumbnail, err = r.repo.Thumbnail(ctx, n.ID); err != nil {
			return nil, err
		}
	}

	logging.CollectDebug("row %d: ref=%q title=%q dates=%q", n.ID, row.ReferenceCode, row.Title, row.Dates)
	return row, nil
}
