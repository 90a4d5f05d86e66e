package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"golang.org/x/sync/errgroup"
)

type EnrichmentService interface {
	ListAthletes(ctx context.Context) (*AthleteListing, error)
	ListTutors(ctx context.Context) (*TutorListing, error)
	ListCoaches(ctx context.Context) (*CoachListing, error)
	ClubRoster(ctx context.Context, clubID int) (*models.ClubRoster, error)
}

type enrichmentService struct {
	personRepo  repositories.PersonRepository
	athleteRepo repositories.AthleteRepository
	tutorRepo   repositories.TutorRepository
	linkRepo    repositories.AthleteTutorRepository
	clubRepo    repositories.ClubRepository
	coachRepo   repositories.CoachRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewEnrichmentService(
	personRepo repositories.PersonRepository,
	athleteRepo repositories.AthleteRepository,
	tutorRepo repositories.TutorRepository,
	linkRepo repositories.AthleteTutorRepository,
	clubRepo repositories.ClubRepository,
	coachRepo repositories.CoachRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) EnrichmentService {
	return &enrichmentService{
		personRepo:  personRepo,
		athleteRepo: athleteRepo,
		tutorRepo:   tutorRepo,
		linkRepo:    linkRepo,
		clubRepo:    clubRepo,
		coachRepo:   coachRepo,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// snapshotLoader fetches several collections concurrently. A failed fetch is logged, counted and
// leaves its slot empty; only context cancellation aborts the whole load.
type snapshotLoader struct {
	g        *errgroup.Group
	ctx      context.Context
	mu       sync.Mutex
	degraded []string
	svc      *enrichmentService
}

func (s *enrichmentService) newLoader(ctx context.Context) *snapshotLoader {
	g, gCtx := errgroup.WithContext(ctx)
	return &snapshotLoader{g: g, ctx: gCtx, svc: s}
}

func load[T any](l *snapshotLoader, collection string, dst *[]T, fetch func(context.Context) ([]T, error)) {
	l.g.Go(func() error {
		items, err := fetch(l.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			l.svc.logger.Warn("collection fetch failed, continuing with empty list", "collection", collection, "error", err)
			l.svc.metrics.IncDegradedFetch(collection)
			l.mu.Lock()
			l.degraded = append(l.degraded, collection)
			l.mu.Unlock()
			items = []T{}
		}
		*dst = items
		return nil
	})
}

func (l *snapshotLoader) wait() ([]string, error) {
	if err := l.g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(l.degraded)
	return l.degraded, nil
}

func (s *enrichmentService) loadSnapshot(ctx context.Context, withCoaches bool) (Snapshot, error) {
	var snap Snapshot
	l := s.newLoader(ctx)
	load(l, "Persona", &snap.Persons, s.personRepo.List)
	load(l, "Atleta", &snap.Athletes, s.athleteRepo.List)
	load(l, "Tutor", &snap.Tutors, s.tutorRepo.List)
	load(l, "AtletaTutor", &snap.Links, s.linkRepo.List)
	load(l, "Club", &snap.Clubs, s.clubRepo.List)
	if withCoaches {
		load(l, "Entrenador", &snap.Coaches, s.coachRepo.List)
	}
	degraded, err := l.wait()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load collections: %w", err)
	}
	snap.Degraded = degraded
	return snap, nil
}

func (s *enrichmentService) ListAthletes(ctx context.Context) (*AthleteListing, error) {
	snap, err := s.loadSnapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	listing := BuildAthleteViews(snap, s.now())
	if n := len(listing.DuplicateLinks); n > 0 {
		s.logger.Warn("athletes with more than one guardian link", "duplicate_links", n)
	}
	if n := len(listing.DanglingLinks); n > 0 {
		s.logger.Warn("guardian links referencing missing persons", "dangling_links", n)
	}
	return &listing, nil
}

func (s *enrichmentService) ListTutors(ctx context.Context) (*TutorListing, error) {
	snap, err := s.loadSnapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	listing := BuildTutorViews(snap, s.now())
	return &listing, nil
}

func (s *enrichmentService) ListCoaches(ctx context.Context) (*CoachListing, error) {
	snap, err := s.loadSnapshot(ctx, true)
	if err != nil {
		return nil, err
	}
	listing := BuildCoachViews(snap, s.now())
	return &listing, nil
}

// ClubRoster loads a club and its members through the club endpoints. The club itself must
// exist; the member lists degrade like any other listing.
func (s *enrichmentService) ClubRoster(ctx context.Context, clubID int) (*models.ClubRoster, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	var (
		athletes  []models.Athlete
		coaches   []models.Coach
		delegates []models.Delegate
		events    []models.Event
		persons   []models.Person
	)
	l := s.newLoader(ctx)
	load(l, "Club/Atletas", &athletes, func(ctx context.Context) ([]models.Athlete, error) { return s.clubRepo.ListAthletes(ctx, clubID) })
	load(l, "Club/Entrenadores", &coaches, func(ctx context.Context) ([]models.Coach, error) { return s.clubRepo.ListCoaches(ctx, clubID) })
	load(l, "Club/Delegados", &delegates, func(ctx context.Context) ([]models.Delegate, error) { return s.clubRepo.ListDelegates(ctx, clubID) })
	load(l, "Club/Eventos", &events, func(ctx context.Context) ([]models.Event, error) { return s.clubRepo.ListEvents(ctx, clubID) })
	load(l, "Persona", &persons, s.personRepo.List)
	degraded, err := l.wait()
	if err != nil {
		return nil, fmt.Errorf("failed to load club %d roster: %w", clubID, err)
	}

	snap := Snapshot{Persons: persons, Athletes: athletes, Coaches: coaches, Clubs: []models.Club{*club}}
	today := s.now()
	return &models.ClubRoster{
		Club:      *club,
		Athletes:  BuildAthleteViews(snap, today).Athletes,
		Coaches:   BuildCoachViews(snap, today).Coaches,
		Delegates: delegates,
		Events:    events,
		Degraded:  degraded,
	}, nil
}
