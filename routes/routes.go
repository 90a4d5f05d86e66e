package routes

import (
	"net/http"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/handlers"
	"github.com/EzequielDigiacomo/sigdef-admin/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EzequielDigiacomo/sigdef-admin/docs" // swagger spec registration
)

const requestTimeout = 60 * time.Second

type Options struct {
	JWTSecretKey   string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

type Handlers struct {
	Athletes  *handlers.AthleteHandler
	Persons   *handlers.PersonHandler
	Workflows *handlers.WorkflowHandler
	Payments  *handlers.PaymentHandler
	Teardown  *handlers.TeardownHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/teardown/{jobID}", h.WebSocket.ServeTeardown)

	router.Route("/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))
		r.Use(middleware.Authenticate(opts.JWTSecretKey))

		r.Get("/athletes", h.Athletes.ListAthletes)
		r.Delete("/athletes/{athleteID}", h.Athletes.DeleteAthlete)
		r.Get("/tutors", h.Athletes.ListTutors)
		r.Delete("/tutors/{tutorID}", h.Athletes.DeleteTutor)
		r.Get("/coaches", h.Athletes.ListCoaches)
		r.Get("/clubs/{clubID}/roster", h.Athletes.ClubRoster)

		r.Route("/persons", func(r chi.Router) {
			r.Get("/by-document/{document}", h.Persons.FindByDocument)
			r.Post("/resolve", h.Persons.Resolve)
			r.Get("/{personID}/documents", h.Persons.ListDocuments)
			r.Post("/{personID}/documents", h.Persons.UploadDocument)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/link-guardian", h.Workflows.LinkGuardian)
			r.Post("/transfer", h.Workflows.Transfer)
			r.Post("/assign-tutor", h.Workflows.AssignTutor)
			r.Post("/assign-delegate", h.Workflows.AssignDelegate)
			r.Get("/incomplete", h.Workflows.ListIncomplete)
			r.Get("/{runID}", h.Workflows.GetRun)
		})

		r.Post("/payments/preference", h.Payments.CreatePreference)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authorize(middleware.RoleAdmin))
			r.Post("/teardown", h.Teardown.Start)
			r.Get("/teardown/{jobID}", h.Teardown.Get)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("{\"error\":\"the requested resource could not be found\"}\n"))
	})
}
