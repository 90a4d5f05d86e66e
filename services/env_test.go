package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"github.com/EzequielDigiacomo/sigdef-admin/testutil"
	"github.com/prometheus/client_golang/prometheus"
)

// testEnv wires every service against an in-memory federation backend.
type testEnv struct {
	backend *testutil.FakeBackend
	log     repositories.WorkflowLogRepository
	metrics *metrics.Metrics
	logger  *slog.Logger

	personRepo   repositories.PersonRepository
	athleteRepo  repositories.AthleteRepository
	tutorRepo    repositories.TutorRepository
	linkRepo     repositories.AthleteTutorRepository
	clubRepo     repositories.ClubRepository
	coachRepo    repositories.CoachRepository
	delegateRepo repositories.DelegateRepository
	eventRepo    repositories.EventRepository
	rawRepo      repositories.RawRepository

	enrichment EnrichmentService
	persons    PersonService
	guardians  GuardianService
	transfers  TransferService
	assign     AssignmentService
	teardown   TeardownService
	seeder     SeedService
}

var fixedToday = time.Date(2024, time.April, 12, 9, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := testutil.NewFakeBackend()
	t.Cleanup(backend.Close)

	client := backend.Client()
	env := &testEnv{
		backend:      backend,
		log:          repositories.NewMemoryWorkflowLogRepository(),
		metrics:      metrics.New(prometheus.NewRegistry()),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		personRepo:   repositories.NewRESTPersonRepository(client),
		athleteRepo:  repositories.NewRESTAthleteRepository(client),
		tutorRepo:    repositories.NewRESTTutorRepository(client),
		linkRepo:     repositories.NewRESTAthleteTutorRepository(client),
		clubRepo:     repositories.NewRESTClubRepository(client),
		coachRepo:    repositories.NewRESTCoachRepository(client),
		delegateRepo: repositories.NewRESTDelegateRepository(client),
		eventRepo:    repositories.NewRESTEventRepository(client),
		rawRepo:      repositories.NewRESTRawRepository(client),
	}

	enrichment := NewEnrichmentService(env.personRepo, env.athleteRepo, env.tutorRepo, env.linkRepo, env.clubRepo, env.coachRepo, env.metrics, env.logger)
	enrichment.(*enrichmentService).now = func() time.Time { return fixedToday }
	env.enrichment = enrichment

	guardians := NewGuardianService(env.personRepo, env.athleteRepo, env.tutorRepo, env.linkRepo, env.log, env.metrics, env.logger)
	guardians.(*guardianService).now = func() time.Time { return fixedToday }
	env.guardians = guardians

	env.persons = NewPersonService(env.personRepo, env.logger)
	env.transfers = NewTransferService(env.athleteRepo, env.clubRepo, env.log, env.metrics, env.logger)
	env.assign = NewAssignmentService(env.personRepo, env.tutorRepo, env.delegateRepo, env.log, env.metrics, env.logger)
	env.teardown = NewTeardownService(env.rawRepo, 3, env.metrics, env.logger)
	env.seeder = NewSeedService(env.persons, env.clubRepo, env.athleteRepo, env.tutorRepo, env.coachRepo, env.linkRepo, env.eventRepo, env.metrics, env.logger)
	return env
}

func (e *testEnv) seedPerson(doc, first, last, birth, email, phone string) int {
	return e.backend.Seed("Persona", map[string]any{
		"nombre": first, "apellido": last, "documento": doc,
		"fechaNacimiento": birth, "email": email, "telefono": phone,
	})
}

func (e *testEnv) seedClub(name string) int {
	return e.backend.Seed("Club", map[string]any{"nombre": name, "siglas": name[:3]})
}

func (e *testEnv) seedAthlete(personID int, clubID *int) {
	rec := map[string]any{"idPersona": personID, "categoria": 2, "estadoPago": 1, "observaciones": "zurdo"}
	if clubID != nil {
		rec["idClub"] = *clubID
	} else {
		rec["idClub"] = nil
	}
	e.backend.Seed("Atleta", rec)
}

func (e *testEnv) seedTutor(personID int) {
	e.backend.Seed("Tutor", map[string]any{"idPersona": personID, "tipoTutor": "Padre", "nombre": "viejo", "notas": "conservar"})
}

func (e *testEnv) seedLink(athleteID, tutorID int) int {
	return e.backend.Seed("AtletaTutor", map[string]any{"idAtleta": athleteID, "idTutor": tutorID, "parentesco": 0})
}

func (e *testEnv) linksOf(athleteID int) []map[string]any {
	var out []map[string]any
	for _, rec := range e.backend.Records("AtletaTutor") {
		if id, ok := rec["idAtleta"].(float64); ok && int(id) == athleteID {
			out = append(out, rec)
		}
	}
	return out
}

func ptr(v int) *int { return &v }

// recordingPublisher collects websocket broadcasts.
type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]any
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{messages: make(map[string][]any)}
}

func (p *recordingPublisher) BroadcastToRoom(roomID string, message any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[roomID] = append(p.messages[roomID], message)
}

func (p *recordingPublisher) count(roomID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[roomID])
}

var bg = context.Background()
