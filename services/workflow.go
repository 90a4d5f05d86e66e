package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"github.com/google/uuid"
)

// Workflow names as recorded in the command log.
const (
	WorkflowLinkGuardian   = "link_guardian"
	WorkflowTransfer       = "transfer"
	WorkflowAssignTutor    = "assign_tutor"
	WorkflowAssignDelegate = "assign_delegate"
	WorkflowDeleteTutor    = "delete_tutor"
	WorkflowDeleteAthlete  = "delete_athlete"
)

// WorkflowRunService exposes recorded runs to the API.
type WorkflowRunService interface {
	GetRun(ctx context.Context, runID string) (*models.WorkflowRun, error)
	ListIncomplete(ctx context.Context) ([]*models.WorkflowRun, error)
}

// workflowRecorder writes each step of a relationship workflow to the command log before moving
// on, so an interrupted run shows which mutations already reached the backend.
type workflowRecorder struct {
	log     repositories.WorkflowLogRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newWorkflowRecorder(log repositories.WorkflowLogRepository, m *metrics.Metrics, logger *slog.Logger) *workflowRecorder {
	return &workflowRecorder{log: log, metrics: m, logger: logger}
}

func NewWorkflowRunService(log repositories.WorkflowLogRepository) WorkflowRunService {
	return &workflowRecorder{log: log}
}

// GetRun reports ErrRunNotFound for ids that are not UUIDs, since no run could carry one.
func (r *workflowRecorder) GetRun(ctx context.Context, runID string) (*models.WorkflowRun, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, ErrRunNotFound
	}
	run, err := r.log.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, repositories.ErrWorkflowRunNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (r *workflowRecorder) ListIncomplete(ctx context.Context) ([]*models.WorkflowRun, error) {
	return r.log.ListIncomplete(ctx)
}

type workflowRun struct {
	rec       *workflowRecorder
	id        string
	workflow  string
	started   time.Time
	completed []string
	mutated   bool
	logger    *slog.Logger
}

func (r *workflowRecorder) begin(ctx context.Context, workflow, subject string) (*workflowRun, error) {
	run := &models.WorkflowRun{
		ID:        uuid.NewString(),
		Workflow:  workflow,
		Subject:   subject,
		Status:    models.WorkflowRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := r.log.Begin(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record %s run: %w", workflow, err)
	}
	return &workflowRun{
		rec:      r,
		id:       run.ID,
		workflow: workflow,
		started:  run.StartedAt,
		logger:   r.logger.With("workflow", workflow, "run_id", run.ID, "subject", subject),
	}, nil
}

// step runs fn unless the context is already done, then appends the step to the log. A failing
// step ends the run with a *WorkflowError.
func (w *workflowRun) step(ctx context.Context, name string, mutating bool, detail string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return w.fail(ctx, name, err)
	}
	if err := fn(ctx); err != nil {
		return w.fail(ctx, name, err)
	}
	w.record(ctx, name, mutating, detail)
	return nil
}

func (w *workflowRun) record(ctx context.Context, name string, mutating bool, detail string) {
	if mutating {
		w.completed = append(w.completed, name)
		w.mutated = true
	}
	step := models.WorkflowStep{Name: name, Mutating: mutating, Detail: detail, At: time.Now().UTC()}
	if err := w.rec.log.AppendStep(context.WithoutCancel(ctx), w.id, step); err != nil {
		w.logger.Error("failed to append workflow step", "step", name, "error", err)
	}
	w.logger.Debug("workflow step completed", "step", name, "mutating", mutating)
}

func (w *workflowRun) fail(ctx context.Context, stepName string, err error) error {
	wfErr := &WorkflowError{
		Workflow:  w.workflow,
		RunID:     w.id,
		Step:      stepName,
		Completed: append([]string(nil), w.completed...),
		Mutated:   w.mutated,
		Err:       err,
	}
	if finishErr := w.rec.log.Finish(context.WithoutCancel(ctx), w.id, models.WorkflowFailed, err.Error()); finishErr != nil {
		w.logger.Error("failed to close workflow run", "error", finishErr)
	}
	outcome := "failed"
	if w.mutated {
		outcome = "inconsistent"
		w.logger.Error("workflow stopped after partial mutation", "step", stepName, "completed", w.completed, "error", err)
	} else {
		w.logger.Warn("workflow failed before any mutation", "step", stepName, "error", err)
	}
	w.rec.metrics.ObserveWorkflow(w.workflow, outcome, w.started)
	return wfErr
}

func (w *workflowRun) finish(ctx context.Context) {
	if err := w.rec.log.Finish(context.WithoutCancel(ctx), w.id, models.WorkflowCompleted, ""); err != nil {
		w.logger.Error("failed to close workflow run", "error", err)
	}
	w.rec.metrics.ObserveWorkflow(w.workflow, "completed", w.started)
	w.logger.Info("workflow completed", "steps", w.completed)
}
