package job

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"archreport/internal/archive"
	"archreport/internal/logging"
	"archreport/internal/report"
)

// Repository is what a runner reads: the collector's reads plus slug lookup.
type Repository interface {
	report.Repository
	FindBySlug(ctx context.Context, slug string) (*archive.Node, error)
}

// Options configures a Runner.
type Options struct {
	Culture       string
	ReferenceCode report.ReferenceCodeOptions
}

// Runner executes report jobs one at a time per Run call. A Runner may be
// shared by concurrent Run calls.
type Runner struct {
	repo      Repository
	sink      report.Sink
	exec      Executor
	collector *report.Collector
	labels    report.Labels
	now       func() time.Time
}

// NewRunner wires a runner over repo, writing to sink and reporting to exec.
func NewRunner(repo Repository, sink report.Sink, exec Executor, opts Options) *Runner {
	c := report.NewCollector(repo, opts.Culture, opts.ReferenceCode)
	return &Runner{
		repo:      repo,
		sink:      sink,
		exec:      exec,
		collector: c,
		labels:    report.LabelsFor(c.Culture()),
		now:       time.Now,
	}
}

// Run executes one job to completion. The returned job is always non-nil and
// terminal; the error is the failure cause, also reported to the executor.
func (r *Runner) Run(ctx context.Context, p Params) (*Job, error) {
	j := New(p)
	j.State = StateRunning
	j.StartedAt = r.now()
	if err := r.exec.Started(ctx, j); err != nil {
		j.State, j.Err, j.FinishedAt = StateFailed, err, r.now()
		return j, err
	}
	logging.Job("Job %s started: %s %s for %q", j.ID, p.ReportType, p.ReportFormat, p.ResourceID)

	out, err := r.run(ctx, j)
	j.FinishedAt = r.now()
	if err != nil {
		j.State, j.Err = StateFailed, err
		logging.Get(logging.CategoryJob).Error("Job %s failed (%s): %v", j.ID, kindLabel(err), err)
		if xerr := r.exec.Failed(ctx, j, Message(err)); xerr != nil {
			return j, errors.Join(err, xerr)
		}
		return j, err
	}

	j.State, j.Output = StateCompleted, out
	if err := r.exec.Completed(ctx, j); err != nil {
		j.State, j.Err = StateFailed, err
		return j, err
	}
	logging.Job("Job %s completed in %v (output %q)", j.ID, j.Duration(), out)
	return j, nil
}

// validated is a parsed parameter set.
type validated struct {
	typ    report.Type
	format report.Format
	sortBy report.SortField
}

func validate(p Params) (validated, error) {
	const op = "job.validate"
	var v validated
	for _, req := range []struct{ name, value string }{
		{"resourceId", p.ResourceID},
		{"reportType", p.ReportType},
		{"reportFormat", p.ReportFormat},
	} {
		if strings.TrimSpace(req.value) == "" {
			return v, archive.E(archive.KindInvalidParameter, op, "Missing required parameter: %s", req.name)
		}
	}

	var err error
	if v.typ, err = report.ParseType(p.ReportType); err != nil {
		return v, err
	}
	if v.format, err = report.ParseFormat(p.ReportFormat); err != nil {
		return v, err
	}
	if v.sortBy, err = report.ParseSortField(p.SortBy, p.Authenticated); err != nil {
		return v, err
	}
	return v, nil
}

func (r *Runner) run(ctx context.Context, j *Job) (string, error) {
	p := j.Params
	v, err := validate(p)
	if err != nil {
		return "", err
	}

	vis := archive.Visibility{Authenticated: p.Authenticated}
	resource, err := r.resolve(ctx, p.ResourceID, vis)
	if err != nil {
		return "", err
	}
	j.ObjectID = resource.ID

	level, ok := v.typ.Level()
	if !ok {
		logging.Job("Report type %s produces no output", v.typ)
		return "", nil
	}

	section, err := r.collector.Collect(ctx, resource, level, report.Options{
		Visibility:        vis,
		IncludeThumbnails: p.IncludeThumbnails,
	})
	if err != nil {
		return "", err
	}
	section.Sort(v.sortBy)

	title, err := r.collector.Title(ctx, resource)
	if err != nil {
		return "", err
	}
	doc := &report.Document{
		Resource:          resource,
		ResourceTitle:     title,
		Type:              v.typ,
		Section:           section,
		Labels:            r.labels,
		Authenticated:     p.Authenticated,
		IncludeThumbnails: p.IncludeThumbnails,
		GeneratedAt:       r.now(),
	}
	return report.Write(doc, v.format, r.sink)
}

// resolve finds the target resource by numeric id or slug. Anything the
// actor cannot see counts as missing.
func (r *Runner) resolve(ctx context.Context, ref string, vis archive.Visibility) (*archive.Node, error) {
	var (
		n   *archive.Node
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		n, err = r.repo.FindByID(ctx, id)
	} else {
		n, err = r.repo.FindBySlug(ctx, ref)
	}
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return nil, archive.E(archive.KindInvalidParameter, "job.resolve", "Could not find an information object with id: %s", ref)
	case err != nil:
		return nil, err
	case n.IsDraft() && !vis.IncludesDrafts():
		return nil, archive.E(archive.KindInvalidParameter, "job.resolve", "Could not find an information object with id: %s", ref)
	}
	return n, nil
}

// kindLabel names the failure class of err for logs.
func kindLabel(err error) string {
	if k := archive.KindOf(err); k != "" {
		return string(k)
	}
	return "internal"
}

// Message is the human-readable failure text sent to the executor.
func Message(err error) string {
	var aerr *archive.Error
	if errors.As(err, &aerr) && aerr.Msg != "" {
		if aerr.Err != nil {
			return aerr.Msg + ": " + aerr.Err.Error()
		}
		return aerr.Msg
	}
	return err.Error()
}
