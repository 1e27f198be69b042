package job

import (
	"context"

	"archreport/internal/logging"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs the same report for several resources, at most limit at a
// time. Duplicate resource ids run once, so no two jobs share an output
// path. Jobs are returned in first-occurrence order; the error is the first
// failure, if any. A failing job does not stop the others.
func (r *Runner) RunBatch(ctx context.Context, base Params, resourceIDs []string, limit int) ([]*Job, error) {
	ids := dedupe(resourceIDs)
	if limit < 1 {
		limit = 1
	}
	logging.Job("Batch of %d %s reports (%d requested, limit %d)", len(ids), base.ReportType, len(resourceIDs), limit)

	jobs := make([]*Job, len(ids))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		p := base
		p.ResourceID = id
		g.Go(func() error {
			j, err := r.Run(ctx, p)
			jobs[i] = j
			return err
		})
	}
	return jobs, g.Wait()
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
