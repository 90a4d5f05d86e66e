package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/config"
	"github.com/EzequielDigiacomo/sigdef-admin/db"
	"github.com/EzequielDigiacomo/sigdef-admin/handlers"
	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/progress"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	api "github.com/EzequielDigiacomo/sigdef-admin/routes"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/EzequielDigiacomo/sigdef-admin/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("api_base_url", cfg.APIBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workflow command log: Postgres when configured, in memory otherwise.
	var workflowLog repositories.WorkflowLogRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer closeDB(dbConn, logger)
		if err := repositories.EnsureWorkflowLogSchema(ctx, dbConn); err != nil {
			logger.Error("failed to prepare workflow log schema", slog.Any("error", err))
			os.Exit(1)
		}
		workflowLog = repositories.NewPostgresWorkflowLogRepository(dbConn)
		logger.Info("workflow log stored in postgres")
	} else {
		workflowLog = repositories.NewMemoryWorkflowLogRepository()
		logger.Warn("DATABASE_URL not set, workflow log kept in memory")
	}

	// Teardown reports go to Cloudflare R2 when every R2 variable is set.
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	var uploader storage.FileUploader
	if r2Config.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		uploader = storage.NewMemoryUploader(cfg.R2PublicBaseURL)
		logger.Warn("R2 not configured, teardown reports kept in memory")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hub := progress.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	client := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(logger), apiclient.WithTimeout(cfg.HTTPTimeout))

	personRepo := repositories.NewRESTPersonRepository(client)
	athleteRepo := repositories.NewRESTAthleteRepository(client)
	tutorRepo := repositories.NewRESTTutorRepository(client)
	linkRepo := repositories.NewRESTAthleteTutorRepository(client)
	clubRepo := repositories.NewRESTClubRepository(client)
	coachRepo := repositories.NewRESTCoachRepository(client)
	delegateRepo := repositories.NewRESTDelegateRepository(client)
	documentRepo := repositories.NewRESTDocumentRepository(client)
	paymentRepo := repositories.NewRESTPaymentRepository(client)
	rawRepo := repositories.NewRESTRawRepository(client)
	logger.Info("Repositories initialized")

	enrichmentService := services.NewEnrichmentService(personRepo, athleteRepo, tutorRepo, linkRepo, clubRepo, coachRepo, m, logger)
	personService := services.NewPersonService(personRepo, logger)
	documentService := services.NewDocumentService(personRepo, documentRepo, logger)
	guardianService := services.NewGuardianService(personRepo, athleteRepo, tutorRepo, linkRepo, workflowLog, m, logger)
	transferService := services.NewTransferService(athleteRepo, clubRepo, workflowLog, m, logger)
	assignmentService := services.NewAssignmentService(personRepo, tutorRepo, delegateRepo, workflowLog, m, logger)
	paymentService := services.NewPaymentService(paymentRepo)
	runService := services.NewWorkflowRunService(workflowLog)
	teardownService := services.NewTeardownService(rawRepo, cfg.TeardownConcurrency, m, logger)
	teardownJobs := services.NewTeardownJobs(ctx, teardownService, hub, uploader, cfg.TeardownPassphraseHash, logger)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecretKey:   cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Gatherer:       registry,
	}, api.Handlers{
		Athletes:  handlers.NewAthleteHandler(enrichmentService, guardianService),
		Persons:   handlers.NewPersonHandler(personService, documentService),
		Workflows: handlers.NewWorkflowHandler(guardianService, transferService, assignmentService, runService),
		Payments:  handlers.NewPaymentHandler(paymentService),
		Teardown:  handlers.NewTeardownHandler(teardownJobs),
		WebSocket: handlers.NewWebSocketHandler(hub, teardownJobs, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
		// A canceled teardown stops issuing deletes; wait for it to record what it reached.
		teardownJobs.Wait()
		logger.Info("server stopped")
	}
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
