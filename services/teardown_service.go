package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"golang.org/x/sync/errgroup"
)

const DefaultTeardownConcurrency = 4

// Progress event types emitted while a teardown runs.
const (
	EventStageStarted  = "stage_started"
	EventItemDeleted   = "item_deleted"
	EventItemFailed    = "item_failed"
	EventStageFinished = "stage_finished"
	EventFinished      = "finished"
)

// Teardown stage names, in execution order.
const (
	StageLinks     = "links"
	StageRoles     = "roles"
	StageDocuments = "documents"
	StagePersons   = "persons"
	StageEvents    = "events"
	StageClubs     = "clubs"
)

type ProgressEvent struct {
	Type       string `json:"type"`
	JobID      string `json:"job_id,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Collection string `json:"collection,omitempty"`
	ID         int    `json:"id,omitempty"`
	Error      string `json:"error,omitempty"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
}

// ProgressObserver receives events from concurrent workers and must be safe for concurrent use.
type ProgressObserver func(ProgressEvent)

// teardownCollection is one collection deleted by a stage. idEntities feed the ordered id
// candidates; role records are keyed by the person id.
type teardownCollection struct {
	path       string
	idEntities []string
}

type teardownStage struct {
	name        string
	collections []teardownCollection
}

// teardownStages is ordered by dependency depth: rows that reference others go first.
var teardownStages = []teardownStage{
	{StageLinks, []teardownCollection{
		{repositories.PathAthleteTutors, []string{"atletaTutor"}},
		{repositories.PathRegistrations, []string{"inscripcion"}},
	}},
	{StageRoles, []teardownCollection{
		{repositories.PathAthletes, []string{"persona", "atleta"}},
		{repositories.PathCoaches, []string{"persona", "entrenador"}},
		{repositories.PathDelegates, []string{"persona", "delegadoClub", "delegado"}},
		{repositories.PathTutors, []string{"persona", "tutor"}},
	}},
	{StageDocuments, nil},
	{StagePersons, []teardownCollection{{repositories.PathPersons, []string{"persona"}}}},
	{StageEvents, []teardownCollection{{repositories.PathEvents, []string{"evento"}}}},
	{StageClubs, []teardownCollection{{repositories.PathClubs, []string{"club"}}}},
}

// TeardownOrder returns the collections in the order they are emptied.
func TeardownOrder() []string {
	var order []string
	for _, stage := range teardownStages {
		if stage.name == StageDocuments {
			order = append(order, repositories.PathDocuments)
			continue
		}
		for _, c := range stage.collections {
			order = append(order, c.path)
		}
	}
	return order
}

type TeardownService interface {
	// Run deletes every record the admin tool manages. Item failures are collected in the
	// result and never stop the run, so a nil error does not mean everything was deleted.
	Run(ctx context.Context, jobID string, observer ProgressObserver) *models.BulkResult
}

type teardownService struct {
	rawRepo     repositories.RawRepository
	concurrency int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewTeardownService(rawRepo repositories.RawRepository, concurrency int, m *metrics.Metrics, logger *slog.Logger) TeardownService {
	if concurrency <= 0 {
		concurrency = DefaultTeardownConcurrency
	}
	return &teardownService{rawRepo: rawRepo, concurrency: concurrency, metrics: m, logger: logger}
}

type deleteTarget struct {
	collection string
	id         int
	path       string
}

// teardownRun accumulates the result of one run. Workers append under mu.
type teardownRun struct {
	svc      *teardownService
	result   *models.BulkResult
	observer ProgressObserver
	mu       sync.Mutex
}

func (s *teardownService) Run(ctx context.Context, jobID string, observer ProgressObserver) *models.BulkResult {
	start := time.Now()
	if observer == nil {
		observer = func(ProgressEvent) {}
	}
	run := &teardownRun{
		svc:      s,
		observer: observer,
		result: &models.BulkResult{
			JobID:     jobID,
			StartedAt: start.UTC(),
			Succeeded: []models.BulkItem{},
			Failed:    []models.BulkItem{},
		},
	}
	logger := s.logger.With("job_id", jobID)
	logger.Info("teardown started", "concurrency", s.concurrency)

	for _, stage := range teardownStages {
		before := run.counts()
		observer(ProgressEvent{Type: EventStageStarted, JobID: jobID, Stage: stage.name})

		var targets []deleteTarget
		if stage.name == StageDocuments {
			targets = run.documentTargets(ctx)
		} else {
			for _, c := range stage.collections {
				targets = append(targets, run.collectionTargets(ctx, stage.name, c)...)
			}
		}
		run.deleteAll(ctx, jobID, stage.name, targets)

		after := run.counts()
		ok, failed := after.ok-before.ok, after.failed-before.failed
		logger.Info("teardown stage finished", "stage", stage.name, "succeeded", ok, "failed", failed)
		observer(ProgressEvent{Type: EventStageFinished, JobID: jobID, Stage: stage.name, Succeeded: ok, Failed: failed})
	}

	run.result.FinishedAt = time.Now().UTC()
	sortItems(run.result.Succeeded)
	sortItems(run.result.Failed)
	s.metrics.ObserveTeardown(start)
	total := run.counts()
	logger.Info("teardown finished", "succeeded", total.ok, "failed", total.failed, "duration", time.Since(start))
	observer(ProgressEvent{Type: EventFinished, JobID: jobID, Succeeded: total.ok, Failed: total.failed})
	return run.result
}

type itemCounts struct{ ok, failed int }

func (r *teardownRun) counts() itemCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return itemCounts{ok: len(r.result.Succeeded), failed: len(r.result.Failed)}
}

func (r *teardownRun) fail(stage, collection string, id int, err error) {
	item := models.BulkItem{Stage: stage, Collection: collection, ID: id, Error: err.Error()}
	r.mu.Lock()
	r.result.Failed = append(r.result.Failed, item)
	r.mu.Unlock()
	r.svc.metrics.IncTeardownItem(collection, false)
}

func (r *teardownRun) succeed(stage, collection string, id int) {
	item := models.BulkItem{Stage: stage, Collection: collection, ID: id}
	r.mu.Lock()
	r.result.Succeeded = append(r.result.Succeeded, item)
	r.mu.Unlock()
	r.svc.metrics.IncTeardownItem(collection, true)
}

// collectionTargets lists a collection and resolves the delete path of every record. A list
// failure and records without a usable id are recorded as failed items.
func (r *teardownRun) collectionTargets(ctx context.Context, stage string, c teardownCollection) []deleteTarget {
	records, err := r.svc.rawRepo.List(ctx, c.path)
	if err != nil {
		r.svc.logger.Warn("teardown could not list collection", "collection", c.path, "error", err)
		r.fail(stage, c.path, 0, fmt.Errorf("list: %w", err))
		return nil
	}
	targets := make([]deleteTarget, 0, len(records))
	for _, rec := range records {
		if id, ok := recordID(rec, c.idEntities); ok {
			targets = append(targets, deleteTarget{collection: c.path, id: id, path: fmt.Sprintf("%s/%d", c.path, id)})
			continue
		}
		if c.path == repositories.PathAthleteTutors {
			athleteID, okA := rec.Int("idAtleta")
			tutorID, okT := rec.Int("idTutor")
			if okA && okT {
				targets = append(targets, deleteTarget{collection: c.path, path: fmt.Sprintf("%s/%d/%d", c.path, athleteID, tutorID)})
				continue
			}
		}
		r.fail(stage, c.path, 0, repositories.ErrMissingID)
	}
	return targets
}

// documentTargets lists the documents of every person. Persons are listed again here because
// documents are only reachable per person.
func (r *teardownRun) documentTargets(ctx context.Context) []deleteTarget {
	persons, err := r.svc.rawRepo.List(ctx, repositories.PathPersons)
	if err != nil {
		r.fail(StageDocuments, repositories.PathDocuments, 0, fmt.Errorf("list persons: %w", err))
		return nil
	}

	var (
		mu      sync.Mutex
		targets []deleteTarget
		g       errgroup.Group
	)
	g.SetLimit(r.svc.concurrency)
	for _, p := range persons {
		personID, ok := recordID(p, []string{"persona"})
		if !ok {
			continue
		}
		g.Go(func() error {
			path := fmt.Sprintf("%s/persona/%d", repositories.PathDocuments, personID)
			docs, err := r.svc.rawRepo.List(ctx, path)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				r.fail(StageDocuments, repositories.PathDocuments, 0, fmt.Errorf("list documents of person %d: %w", personID, err))
				return nil
			}
			for _, d := range docs {
				id, ok := recordID(d, []string{"documentacion", "documento"})
				if !ok {
					r.fail(StageDocuments, repositories.PathDocuments, 0, repositories.ErrMissingID)
					continue
				}
				mu.Lock()
				targets = append(targets, deleteTarget{collection: repositories.PathDocuments, id: id, path: fmt.Sprintf("%s/%d", repositories.PathDocuments, id)})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return targets
}

func (r *teardownRun) deleteAll(ctx context.Context, jobID, stage string, targets []deleteTarget) {
	var g errgroup.Group
	g.SetLimit(r.svc.concurrency)
	for _, t := range targets {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = r.svc.rawRepo.DeletePath(ctx, t.path)
				if isNotFound(err) {
					err = nil
				}
			}
			if err != nil {
				r.fail(stage, t.collection, t.id, err)
				r.observer(ProgressEvent{Type: EventItemFailed, JobID: jobID, Stage: stage, Collection: t.collection, ID: t.id, Error: err.Error()})
				return nil
			}
			r.succeed(stage, t.collection, t.id)
			r.observer(ProgressEvent{Type: EventItemDeleted, JobID: jobID, Stage: stage, Collection: t.collection, ID: t.id})
			return nil
		})
	}
	_ = g.Wait()
}

// recordID tries the id candidates of each entity in turn.
func recordID(rec apiclient.Record, entities []string) (int, bool) {
	for _, entity := range entities {
		if id, ok := rec.ID(entity); ok {
			return id, true
		}
	}
	return 0, false
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// sortItems orders items by stage, then collection and id, so reports are stable across runs.
func sortItems(items []models.BulkItem) {
	rank := make(map[string]int, len(teardownStages))
	for i, stage := range teardownStages {
		rank[stage.name] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if rank[a.Stage] != rank[b.Stage] {
			return rank[a.Stage] < rank[b.Stage]
		}
		if a.Collection != b.Collection {
			return a.Collection < b.Collection
		}
		return a.ID < b.ID
	})
}
