// Package job runs report jobs: it validates parameters, drives the
// collect, sort and write pipeline and reports the outcome to an executor.
package job

import (
	"time"

	"github.com/google/uuid"
)

// State is a job's position in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Params are the invocation parameters of a report job.
type Params struct {
	ResourceID        string `json:"resourceId"`
	ReportType        string `json:"reportType"`
	ReportFormat      string `json:"reportFormat"`
	SortBy            string `json:"sortBy,omitempty"`
	IncludeThumbnails bool   `json:"includeThumbnails,omitempty"`
	Authenticated     bool   `json:"authenticated,omitempty"`
}

// Job is one report run.
type Job struct {
	ID       uuid.UUID
	Params   Params
	State    State
	ObjectID int64 // resolved resource, 0 until known

	// Output is the name written to the sink, empty when nothing was written.
	Output string
	Err    error

	StartedAt  time.Time
	FinishedAt time.Time
}

// New returns a pending job with a fresh id.
func New(p Params) *Job {
	return &Job{ID: uuid.New(), Params: p, State: StatePending}
}

// Name is the job's display name.
func (j *Job) Name() string {
	return "generateReport:" + j.Params.ReportType
}

// Duration is how long the job ran; zero until it finishes.
func (j *Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
