package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPQError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate run id", &pq.Error{Code: "23505"}, ErrWorkflowRunConflict},
		{"step for missing run", &pq.Error{Code: "23503"}, ErrWorkflowRunNotFound},
		{"malformed uuid", &pq.Error{Code: "22P02"}, ErrWorkflowRunNotFound},
		{"wrapped malformed uuid", fmt.Errorf("query: %w", &pq.Error{Code: "22P02"}), ErrWorkflowRunNotFound},
		{"connection lost", &pq.Error{Code: "08006"}, nil},
		{"not a postgres error", errors.New("boom"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapPQError(tc.err))
		})
	}
}

func TestMemoryWorkflowLogLifecycle(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryWorkflowLogRepository()
	run := &models.WorkflowRun{ID: "run-1", Workflow: "transfer", Subject: "athlete 7", Status: models.WorkflowRunning, StartedAt: time.Now().UTC()}

	require.NoError(t, log.Begin(ctx, run))
	assert.ErrorIs(t, log.Begin(ctx, run), ErrWorkflowRunConflict)
	require.NoError(t, log.AppendStep(ctx, "run-1", models.WorkflowStep{Name: "update_athlete", Mutating: true, At: time.Now().UTC()}))

	incomplete, err := log.ListIncomplete(ctx)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Len(t, incomplete[0].Steps, 1)

	require.NoError(t, log.Finish(ctx, "run-1", models.WorkflowCompleted, ""))
	got, err := log.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, got.Status)
	assert.NotNil(t, got.FinishedAt)

	incomplete, err = log.ListIncomplete(ctx)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
}

func TestMemoryWorkflowLogUnknownRun(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryWorkflowLogRepository()

	_, err := log.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkflowRunNotFound)
	assert.ErrorIs(t, log.AppendStep(ctx, "missing", models.WorkflowStep{Name: "x"}), ErrWorkflowRunNotFound)
	assert.ErrorIs(t, log.Finish(ctx, "missing", models.WorkflowFailed, "boom"), ErrWorkflowRunNotFound)
}
