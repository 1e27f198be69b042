package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Job statuses as persisted.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobRecord is one persisted report job.
type JobRecord struct {
	ID          string
	Name        string
	ObjectID    int64
	Status      string
	Params      string // JSON
	Output      string
	Message     string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CreateJob records a job as running.
func (s *Store) CreateJob(ctx context.Context, rec JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Status == "" {
		rec.Status = JobStatusRunning
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job (id, name, object_id, status, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.ObjectID, rec.Status, rec.Params, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", rec.ID, err)
	}
	return nil
}

// FinishJob records the terminal status of a job.
func (s *Store) FinishJob(ctx context.Context, id, status, output, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE job SET status = ?, output = ?, message = ?, completed_at = ?
		WHERE id = ?`,
		status, output, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

// SetJobObject records the resolved description of a job.
func (s *Store) SetJobObject(ctx context.Context, id string, objectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "UPDATE job SET object_id = ? WHERE id = ?", objectID, id)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return nil
}

// RecentJobs returns the latest jobs, newest first.
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(object_id, 0), status, COALESCE(params, ''),
			COALESCE(output, ''), COALESCE(message, ''), created_at, completed_at
		FROM job ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRecord
	for rows.Next() {
		var rec JobRecord
		var completed sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.ObjectID, &rec.Status, &rec.Params,
			&rec.Output, &rec.Message, &rec.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			rec.CompletedAt = &t
		}
		jobs = append(jobs, rec)
	}
	return jobs, rows.Err()
}
