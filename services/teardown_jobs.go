package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/progress"
	"github.com/EzequielDigiacomo/sigdef-admin/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ProgressPublisher pushes messages to websocket rooms.
type ProgressPublisher interface {
	BroadcastToRoom(roomID string, message any)
}

// TeardownRoom is the websocket room that carries the progress of a job.
func TeardownRoom(jobID string) string {
	return "teardown_" + jobID
}

// TeardownReportKey is the object key of a job's archived report.
func TeardownReportKey(jobID string) string {
	return "teardown/" + jobID + ".json"
}

type TeardownJobs interface {
	// Start checks the passphrase and launches a teardown in the background. Only one job runs
	// at a time.
	Start(ctx context.Context, passphrase string) (*models.TeardownJob, error)
	Get(jobID string) (*models.TeardownJob, error)
	// Wait blocks until every started job has finished.
	Wait()
}

type teardownJobs struct {
	teardown       TeardownService
	publisher      ProgressPublisher
	uploader       storage.FileUploader
	passphraseHash []byte
	baseCtx        context.Context
	logger         *slog.Logger

	mu      sync.RWMutex
	jobs    map[string]*models.TeardownJob
	running string
	wg      sync.WaitGroup
}

// NewTeardownJobs wires the job registry. baseCtx bounds the lifetime of background jobs;
// publisher, uploader and passphraseHash are optional.
func NewTeardownJobs(
	baseCtx context.Context,
	teardown TeardownService,
	publisher ProgressPublisher,
	uploader storage.FileUploader,
	passphraseHash string,
	logger *slog.Logger,
) TeardownJobs {
	return &teardownJobs{
		teardown:       teardown,
		publisher:      publisher,
		uploader:       uploader,
		passphraseHash: []byte(passphraseHash),
		baseCtx:        baseCtx,
		logger:         logger,
		jobs:           make(map[string]*models.TeardownJob),
	}
}

func (j *teardownJobs) checkPassphrase(passphrase string) error {
	if len(j.passphraseHash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(j.passphraseHash, []byte(passphrase)); err != nil {
		return ErrPassphraseMismatch
	}
	return nil
}

// Start runs the job on the base context, carrying over the caller's bearer token so the
// backend accepts the deletes after the request has returned.
func (j *teardownJobs) Start(ctx context.Context, passphrase string) (*models.TeardownJob, error) {
	if err := j.checkPassphrase(passphrase); err != nil {
		return nil, err
	}

	j.mu.Lock()
	if j.running != "" {
		j.mu.Unlock()
		return nil, ErrTeardownInProgress
	}
	job := &models.TeardownJob{ID: uuid.NewString(), Status: models.TeardownRunning}
	j.jobs[job.ID] = job
	j.running = job.ID
	snapshot := *job
	j.mu.Unlock()

	runCtx := j.baseCtx
	if token, ok := apiclient.TokenFromContext(ctx); ok {
		runCtx = apiclient.WithToken(runCtx, token)
	}

	j.wg.Add(1)
	go j.run(runCtx, job.ID)
	return &snapshot, nil
}

func (j *teardownJobs) run(ctx context.Context, jobID string) {
	defer j.wg.Done()
	logger := j.logger.With("job_id", jobID)

	room := TeardownRoom(jobID)
	observer := func(ev ProgressEvent) {
		if j.publisher != nil {
			j.publisher.BroadcastToRoom(room, progress.Message{Type: ev.Type, Payload: ev, RoomID: room})
		}
	}
	result := j.teardown.Run(ctx, jobID, observer)
	reportURL := j.archive(ctx, jobID, result, logger)

	j.mu.Lock()
	job := j.jobs[jobID]
	job.Status = models.TeardownFinished
	job.Result = result
	job.ReportURL = reportURL
	j.running = ""
	j.mu.Unlock()
}

// archive uploads the report; a failed upload is logged and leaves the job without a URL.
func (j *teardownJobs) archive(ctx context.Context, jobID string, result *models.BulkResult, logger *slog.Logger) string {
	if j.uploader == nil {
		return ""
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode teardown report", "error", err)
		return ""
	}
	uploaded, err := j.uploader.Upload(context.WithoutCancel(ctx), TeardownReportKey(jobID), "application/json", bytes.NewReader(data))
	if err != nil {
		logger.Error("failed to archive teardown report", "error", err)
		return ""
	}
	logger.Info("teardown report archived", "key", uploaded.Key, "location", uploaded.Location)
	return uploaded.Location
}

func (j *teardownJobs) Get(jobID string) (*models.TeardownJob, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := j.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (j *teardownJobs) Wait() {
	j.wg.Wait()
}
