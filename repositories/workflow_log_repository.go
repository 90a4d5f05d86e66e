package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/lib/pq"
)

// WorkflowLogRepository is the command log of multi-step mutations. Runs are appended step by
// step so that a run left in "running" or "failed" shows exactly which mutations reached the
// backend.
type WorkflowLogRepository interface {
	Begin(ctx context.Context, run *models.WorkflowRun) error
	AppendStep(ctx context.Context, runID string, step models.WorkflowStep) error
	Finish(ctx context.Context, runID string, status models.WorkflowStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*models.WorkflowRun, error)
	ListIncomplete(ctx context.Context) ([]*models.WorkflowRun, error)
}

const workflowLogSchema = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	id          UUID PRIMARY KEY,
	workflow    TEXT NOT NULL,
	subject     TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS workflow_steps (
	id         BIGSERIAL PRIMARY KEY,
	run_id     UUID NOT NULL REFERENCES workflow_runs(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	mutating   BOOLEAN NOT NULL,
	detail     TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workflow_steps_run_id_idx ON workflow_steps (run_id);`

type postgresWorkflowLogRepository struct {
	db *sql.DB
}

func NewPostgresWorkflowLogRepository(db *sql.DB) WorkflowLogRepository {
	return &postgresWorkflowLogRepository{db: db}
}

// EnsureWorkflowLogSchema creates the command log tables when missing.
func EnsureWorkflowLogSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, workflowLogSchema); err != nil {
		return fmt.Errorf("failed to create workflow log schema: %w", err)
	}
	return nil
}

func (r *postgresWorkflowLogRepository) Begin(ctx context.Context, run *models.WorkflowRun) error {
	query := `INSERT INTO workflow_runs (id, workflow, subject, status, started_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, run.ID, run.Workflow, run.Subject, run.Status, run.StartedAt)
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert workflow run %s: %w", run.ID, err)
	}
	return nil
}

func (r *postgresWorkflowLogRepository) AppendStep(ctx context.Context, runID string, step models.WorkflowStep) error {
	query := `INSERT INTO workflow_steps (run_id, name, mutating, detail, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, runID, step.Name, step.Mutating, step.Detail, step.At)
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to append step %s to run %s: %w", step.Name, runID, err)
	}
	return nil
}

func (r *postgresWorkflowLogRepository) Finish(ctx context.Context, runID string, status models.WorkflowStatus, errMsg string) error {
	query := `UPDATE workflow_runs SET status = $2, error = NULLIF($3, ''), finished_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, runID, status, errMsg, time.Now().UTC())
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to finish workflow run %s: %w", runID, err)
	}
	return checkAffectedRows(result, ErrWorkflowRunNotFound)
}

func (r *postgresWorkflowLogRepository) GetRun(ctx context.Context, runID string) (*models.WorkflowRun, error) {
	query := `SELECT id, workflow, subject, status, COALESCE(error, ''), started_at, finished_at FROM workflow_runs WHERE id = $1`
	run := &models.WorkflowRun{}
	var finished sql.NullTime
	err := r.db.QueryRowContext(ctx, query, runID).Scan(&run.ID, &run.Workflow, &run.Subject, &run.Status, &run.Error, &run.StartedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkflowRunNotFound
		}
		if mapped := mapPQError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get workflow run %s: %w", runID, err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	steps, err := r.listSteps(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Steps = steps
	return run, nil
}

func (r *postgresWorkflowLogRepository) listSteps(ctx context.Context, runID string) ([]models.WorkflowStep, error) {
	query := `SELECT name, mutating, COALESCE(detail, ''), created_at FROM workflow_steps WHERE run_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps of run %s: %w", runID, err)
	}
	defer rows.Close()

	steps := make([]models.WorkflowStep, 0)
	for rows.Next() {
		var step models.WorkflowStep
		if err := rows.Scan(&step.Name, &step.Mutating, &step.Detail, &step.At); err != nil {
			return nil, fmt.Errorf("failed to scan workflow step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (r *postgresWorkflowLogRepository) ListIncomplete(ctx context.Context) ([]*models.WorkflowRun, error) {
	query := `SELECT id FROM workflow_runs WHERE status <> $1 ORDER BY started_at DESC LIMIT 100`
	rows, err := r.db.QueryContext(ctx, query, models.WorkflowCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete workflow runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan workflow run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]*models.WorkflowRun, 0, len(ids))
	for _, id := range ids {
		run, err := r.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// mapPQError translates the Postgres errors a caller can trigger with a bad run id into the
// repository's sentinel errors. It returns nil for anything else.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		return ErrWorkflowRunConflict
	case "23503", "22P02": // foreign_key_violation, invalid_text_representation
		return ErrWorkflowRunNotFound
	}
	return nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// memoryWorkflowLogRepository backs the command log when no database is configured.
type memoryWorkflowLogRepository struct {
	mu   sync.RWMutex
	runs map[string]*models.WorkflowRun
}

func NewMemoryWorkflowLogRepository() WorkflowLogRepository {
	return &memoryWorkflowLogRepository{runs: make(map[string]*models.WorkflowRun)}
}

func (r *memoryWorkflowLogRepository) Begin(_ context.Context, run *models.WorkflowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return ErrWorkflowRunConflict
	}
	stored := *run
	stored.Steps = append([]models.WorkflowStep(nil), run.Steps...)
	r.runs[run.ID] = &stored
	return nil
}

func (r *memoryWorkflowLogRepository) AppendStep(_ context.Context, runID string, step models.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return ErrWorkflowRunNotFound
	}
	run.Steps = append(run.Steps, step)
	return nil
}

func (r *memoryWorkflowLogRepository) Finish(_ context.Context, runID string, status models.WorkflowStatus, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return ErrWorkflowRunNotFound
	}
	now := time.Now().UTC()
	run.Status = status
	run.Error = errMsg
	run.FinishedAt = &now
	return nil
}

func (r *memoryWorkflowLogRepository) GetRun(_ context.Context, runID string) (*models.WorkflowRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[runID]
	if !ok {
		return nil, ErrWorkflowRunNotFound
	}
	return copyRun(run), nil
}

func (r *memoryWorkflowLogRepository) ListIncomplete(_ context.Context) ([]*models.WorkflowRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := make([]*models.WorkflowRun, 0)
	for _, run := range r.runs {
		if run.Status != models.WorkflowCompleted {
			runs = append(runs, copyRun(run))
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs, nil
}

func copyRun(run *models.WorkflowRun) *models.WorkflowRun {
	c := *run
	c.Steps = append([]models.WorkflowStep(nil), run.Steps...)
	return &c
}
