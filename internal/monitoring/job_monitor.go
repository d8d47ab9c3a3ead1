// Package monitoring tracks background job runs — the server's periodic
// Postgres and Redis dependency health check — in a durable table so an operator can see
// what ran, when, and whether it failed, without tailing logs.
package monitoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// JobRun represents a single execution of a named background job.
type JobRun struct {
	ID             int64                  `json:"id"`
	JobName        string                 `json:"job_name"`
	JobType        string                 `json:"job_type"`
	Status         string                 `json:"status"`
	TotalItems     int                    `json:"total_items"`
	ItemsProcessed int                    `json:"items_processed"`
	ItemsSucceeded int                    `json:"items_succeeded"`
	ItemsFailed    int                    `json:"items_failed"`
	ErrorMessage   *string                `json:"error_message,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// Job run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobMonitor records job_runs rows directly against the shared connection
// pool — it deliberately bypasses the repository/dberrors layer since a
// monitoring write must never block or fail the job it's tracking.
type JobMonitor struct {
	db *sql.DB
}

// NewJobMonitor builds a JobMonitor over db.
func NewJobMonitor(db *sql.DB) *JobMonitor {
	return &JobMonitor{db: db}
}

// StartJob inserts a running JobRun row and returns it with its assigned ID.
func (m *JobMonitor) StartJob(ctx context.Context, jobName, jobType string, totalItems int, metadata map[string]interface{}) (*JobRun, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal job metadata: %w", err)
	}

	query := `
		INSERT INTO huntiq.job_runs (
			job_name, job_type, status, total_items, started_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, started_at, updated_at
	`

	job := &JobRun{
		JobName:    jobName,
		JobType:    jobType,
		Status:     StatusRunning,
		TotalItems: totalItems,
		Metadata:   metadata,
	}

	err = m.db.QueryRowContext(
		ctx, query,
		jobName, jobType, StatusRunning, totalItems, time.Now(), metadataJSON,
	).Scan(&job.ID, &job.StartedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("start job %s: %w", jobName, err)
	}

	return job, nil
}

// UpdateProgress updates a running job's item counters.
func (m *JobMonitor) UpdateProgress(ctx context.Context, jobID int64, itemsProcessed, succeeded, failed int) error {
	query := `
		UPDATE huntiq.job_runs
		SET items_processed = $1, items_succeeded = $2, items_failed = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := m.db.ExecContext(ctx, query, itemsProcessed, succeeded, failed, jobID, StatusRunning)
	if err != nil {
		return fmt.Errorf("update job %d progress: %w", jobID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected for job %d: %w", jobID, err)
	}
	if rows == 0 {
		return fmt.Errorf("job %d not found or not running", jobID)
	}
	return nil
}

// CompleteJob marks a job run as completed.
func (m *JobMonitor) CompleteJob(ctx context.Context, jobID int64) error {
	query := `UPDATE huntiq.job_runs SET status = $1, completed_at = $2 WHERE id = $3`
	if _, err := m.db.ExecContext(ctx, query, StatusCompleted, time.Now(), jobID); err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	return nil
}

// FailJob marks a job run as failed with errMsg.
func (m *JobMonitor) FailJob(ctx context.Context, jobID int64, errMsg string) error {
	query := `UPDATE huntiq.job_runs SET status = $1, completed_at = $2, error_message = $3 WHERE id = $4`
	if _, err := m.db.ExecContext(ctx, query, StatusFailed, time.Now(), errMsg, jobID); err != nil {
		return fmt.Errorf("fail job %d: %w", jobID, err)
	}
	return nil
}

// GetActiveJobs returns the most recent running execution for each job name.
func (m *JobMonitor) GetActiveJobs(ctx context.Context) ([]*JobRun, error) {
	query := `
		WITH ranked_jobs AS (
			SELECT id, job_name, job_type, status, total_items, items_processed,
			       items_succeeded, items_failed, error_message, started_at,
			       completed_at, updated_at, metadata,
			       ROW_NUMBER() OVER (PARTITION BY job_name ORDER BY started_at DESC) AS rn
			FROM huntiq.job_runs
			WHERE status = $1
		)
		SELECT id, job_name, job_type, status, total_items, items_processed,
		       items_succeeded, items_failed, error_message, started_at,
		       completed_at, updated_at, metadata
		FROM ranked_jobs WHERE rn = 1
		ORDER BY started_at DESC
	`
	rows, err := m.db.QueryContext(ctx, query, StatusRunning)
	if err != nil {
		return nil, fmt.Errorf("query active jobs: %w", err)
	}
	defer rows.Close()
	return scanJobRuns(rows)
}

// GetJobHistory returns the most recent limit executions of jobName.
func (m *JobMonitor) GetJobHistory(ctx context.Context, jobName string, limit int) ([]*JobRun, error) {
	query := `
		SELECT id, job_name, job_type, status, total_items, items_processed,
		       items_succeeded, items_failed, error_message, started_at,
		       completed_at, updated_at, metadata
		FROM huntiq.job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := m.db.QueryContext(ctx, query, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("query job history for %s: %w", jobName, err)
	}
	defer rows.Close()
	return scanJobRuns(rows)
}

// GetLatestJobByName returns the most recent execution of jobName, if any.
func (m *JobMonitor) GetLatestJobByName(ctx context.Context, jobName string) (*JobRun, error) {
	query := `
		SELECT id, job_name, job_type, status, total_items, items_processed,
		       items_succeeded, items_failed, error_message, started_at,
		       completed_at, updated_at, metadata
		FROM huntiq.job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT 1
	`
	row := m.db.QueryRowContext(ctx, query, jobName)
	return scanJobRun(row)
}

func scanJobRuns(rows *sql.Rows) ([]*JobRun, error) {
	var jobs []*JobRun
	for rows.Next() {
		job, err := scanJobRun(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJobRun(scanner interface {
	Scan(dest ...interface{}) error
}) (*JobRun, error) {
	job := &JobRun{}
	var metadataJSON []byte

	err := scanner.Scan(
		&job.ID, &job.JobName, &job.JobType, &job.Status, &job.TotalItems,
		&job.ItemsProcessed, &job.ItemsSucceeded, &job.ItemsFailed, &job.ErrorMessage,
		&job.StartedAt, &job.CompletedAt, &job.UpdatedAt, &metadataJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("scan job run: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &job.Metadata); err != nil {
			log.Printf("warning: failed to unmarshal job metadata: %v", err)
			job.Metadata = make(map[string]interface{})
		}
	} else {
		job.Metadata = make(map[string]interface{})
	}

	return job, nil
}
