package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/handlers"
	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/progress"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/EzequielDigiacomo/sigdef-admin/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (chi.Router, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend()
	t.Cleanup(backend.Close)

	client := backend.Client()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := repositories.NewMemoryWorkflowLogRepository()

	personRepo := repositories.NewRESTPersonRepository(client)
	athleteRepo := repositories.NewRESTAthleteRepository(client)
	tutorRepo := repositories.NewRESTTutorRepository(client)
	linkRepo := repositories.NewRESTAthleteTutorRepository(client)
	clubRepo := repositories.NewRESTClubRepository(client)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := progress.NewHub(logger)
	go hub.Run(ctx)

	guardians := services.NewGuardianService(personRepo, athleteRepo, tutorRepo, linkRepo, log, m, logger)
	jobs := services.NewTeardownJobs(ctx, services.NewTeardownService(repositories.NewRESTRawRepository(client), 2, m, logger), hub, nil, "", logger)
	t.Cleanup(jobs.Wait)

	router := chi.NewRouter()
	SetupRoutes(router, Options{
		JWTSecretKey:   testSecret,
		AllowedOrigins: []string{"*"},
		Gatherer:       registry,
	}, Handlers{
		Athletes: handlers.NewAthleteHandler(
			services.NewEnrichmentService(personRepo, athleteRepo, tutorRepo, linkRepo, clubRepo, repositories.NewRESTCoachRepository(client), m, logger),
			guardians,
		),
		Persons: handlers.NewPersonHandler(
			services.NewPersonService(personRepo, logger),
			services.NewDocumentService(personRepo, repositories.NewRESTDocumentRepository(client), logger),
		),
		Workflows: handlers.NewWorkflowHandler(
			guardians,
			services.NewTransferService(athleteRepo, clubRepo, log, m, logger),
			services.NewAssignmentService(personRepo, tutorRepo, repositories.NewRESTDelegateRepository(client), log, m, logger),
			services.NewWorkflowRunService(log),
		),
		Payments:  handlers.NewPaymentHandler(services.NewPaymentService(repositories.NewRESTPaymentRepository(client))),
		Teardown:  handlers.NewTeardownHandler(jobs),
		WebSocket: handlers.NewWebSocketHandler(hub, jobs, []string{"*"}, logger),
	})
	return router, backend
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func serve(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/healthz", "", "").Code)

	rec := serve(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/workflows/link-guardian")
}

func TestVersionedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/v1/athletes", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/v1/athletes", signToken(t, "Delegado"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenIsForwardedToBackend(t *testing.T) {
	router, backend := newTestRouter(t)
	token := signToken(t, "Delegado")
	backend.RequireToken(token)

	rec := serve(router, http.MethodGet, "/v1/coaches", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTeardownRequiresAdmin(t *testing.T) {
	router, backend := newTestRouter(t)
	backend.Seed("Club", map[string]any{"nombre": "Club Regatas"})

	rec := serve(router, http.MethodPost, "/v1/admin/teardown", signToken(t, "Delegado"), `{"passphrase":""}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, backend.Count("Club"))

	rec = serve(router, http.MethodPost, "/v1/admin/teardown", signToken(t, "Admin"), `{"passphrase":""}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))
}

func TestUnknownRouteAnswersJSON404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := serve(router, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestTeardownWebSocketUnknownJob(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := serve(router, http.MethodGet, "/ws/teardown/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeardownForwardsAdminTokenToBackend(t *testing.T) {
	router, backend := newTestRouter(t)
	admin := signToken(t, "Admin")
	backend.RequireToken(admin)
	backend.Seed("Club", map[string]any{"nombre": "Club Regatas"})
	backend.Seed("Persona", map[string]any{"nombre": "Ana", "apellido": "Paz", "documento": "111"})

	rec := serve(router, http.MethodPost, "/v1/admin/teardown", admin, `{"passphrase":""}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	location := rec.Header().Get("Location")

	require.Eventually(t, func() bool {
		res := serve(router, http.MethodGet, location, admin, "")
		return res.Code == http.StatusOK && strings.Contains(res.Body.String(), `"status": "finished"`)
	}, 5*time.Second, 20*time.Millisecond)

	res := serve(router, http.MethodGet, location, admin, "")
	assert.NotContains(t, res.Body.String(), "Unauthorized")
	assert.Zero(t, backend.Count("Club"))
	assert.Zero(t, backend.Count("Persona"))
}
