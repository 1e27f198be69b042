package job

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"archreport/internal/store"
)

// Executor is told about every job transition.
type Executor interface {
	Started(ctx context.Context, j *Job) error
	Completed(ctx context.Context, j *Job) error
	Failed(ctx context.Context, j *Job, msg string) error
}

// Event is one transition seen by a MemoryExecutor.
type Event struct {
	JobID   string
	State   State
	Message string
}

// MemoryExecutor keeps transitions in memory.
type MemoryExecutor struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryExecutor) record(j *Job, s State, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{JobID: j.ID.String(), State: s, Message: msg})
	return nil
}

func (m *MemoryExecutor) Started(_ context.Context, j *Job) error {
	return m.record(j, StateRunning, "")
}

func (m *MemoryExecutor) Completed(_ context.Context, j *Job) error {
	return m.record(j, StateCompleted, "")
}

func (m *MemoryExecutor) Failed(_ context.Context, j *Job, msg string) error {
	return m.record(j, StateFailed, msg)
}

// Events returns a copy of the recorded transitions.
func (m *MemoryExecutor) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// NopExecutor ignores transitions.
type NopExecutor struct{}

func (NopExecutor) Started(context.Context, *Job) error        { return nil }
func (NopExecutor) Completed(context.Context, *Job) error      { return nil }
func (NopExecutor) Failed(context.Context, *Job, string) error { return nil }

// JobLog persists job status rows.
type JobLog interface {
	CreateJob(ctx context.Context, rec store.JobRecord) error
	FinishJob(ctx context.Context, id, status, output, message string) error
	SetJobObject(ctx context.Context, id string, objectID int64) error
}

// StoreExecutor records transitions in a JobLog.
type StoreExecutor struct {
	Log JobLog
}

func (e StoreExecutor) Started(ctx context.Context, j *Job) error {
	params, err := json.Marshal(j.Params)
	if err != nil {
		return fmt.Errorf("failed to encode job params: %w", err)
	}
	return e.Log.CreateJob(ctx, store.JobRecord{
		ID:        j.ID.String(),
		Name:      j.Name(),
		Status:    store.JobStatusRunning,
		Params:    string(params),
		CreatedAt: j.StartedAt,
	})
}

func (e StoreExecutor) Completed(ctx context.Context, j *Job) error {
	if err := e.setObject(ctx, j); err != nil {
		return err
	}
	return e.Log.FinishJob(ctx, j.ID.String(), store.JobStatusCompleted, j.Output, "")
}

func (e StoreExecutor) Failed(ctx context.Context, j *Job, msg string) error {
	if err := e.setObject(ctx, j); err != nil {
		return err
	}
	return e.Log.FinishJob(ctx, j.ID.String(), store.JobStatusFailed, "", msg)
}

func (e StoreExecutor) setObject(ctx context.Context, j *Job) error {
	if j.ObjectID == 0 {
		return nil
	}
	return e.Log.SetJobObject(ctx, j.ID.String(), j.ObjectID)
}
