// Command seed loads demo fixtures into the federation backend, tears them down, or hashes a
// teardown passphrase for TEARDOWN_PASSPHRASE_HASH.
//
//	seed seed [-n 10] [-seed 42]
//	seed teardown -yes
//	seed hash-passphrase <text>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/config"
	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

const usage = `usage:
  seed seed [-n count] [-seed value]
  seed teardown -yes
  seed hash-passphrase <text>`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	switch args[0] {
	case "hash-passphrase":
		if len(args) != 2 || args[1] == "" {
			return fmt.Errorf("hash-passphrase takes exactly one argument\n%s", usage)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(args[1]), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing passphrase: %w", err)
		}
		_, err = fmt.Fprintln(out, string(hash))
		return err
	case "seed":
		return runSeed(args[1:], out)
	case "teardown":
		return runTeardown(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

type env struct {
	cfg    *config.Config
	client *apiclient.Client
	ctx    context.Context
	stop   context.CancelFunc
	logger *slog.Logger
	m      *metrics.Metrics
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if cfg.APIToken != "" {
		ctx = apiclient.WithToken(ctx, cfg.APIToken)
	}
	return &env{
		cfg:    cfg,
		client: apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(logger), apiclient.WithTimeout(cfg.HTTPTimeout)),
		ctx:    ctx,
		stop:   stop,
		logger: logger,
		m:      metrics.New(prometheus.NewRegistry()),
	}, nil
}

func runSeed(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	count := fs.Int("n", 10, "number of athletes to generate")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed; the same seed yields the same fixtures")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count <= 0 {
		return fmt.Errorf("-n must be positive")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.stop()

	personRepo := repositories.NewRESTPersonRepository(e.client)
	svc := services.NewSeedService(
		services.NewPersonService(personRepo, e.logger),
		repositories.NewRESTClubRepository(e.client),
		repositories.NewRESTAthleteRepository(e.client),
		repositories.NewRESTTutorRepository(e.client),
		repositories.NewRESTCoachRepository(e.client),
		repositories.NewRESTAthleteTutorRepository(e.client),
		repositories.NewRESTEventRepository(e.client),
		e.m,
		e.logger,
	)
	e.logger.Info("seeding", "athletes", *count, "seed", *seed)
	report, err := svc.Seed(e.ctx, services.GenerateFixtures(*count, *seed))
	if err != nil {
		return err
	}
	return writeReport(out, report)
}

func runTeardown(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("teardown", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm that every managed record will be deleted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("teardown deletes every managed record; rerun with -yes to confirm")
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.stop()

	svc := services.NewTeardownService(repositories.NewRESTRawRepository(e.client), e.cfg.TeardownConcurrency, e.m, e.logger)
	result := svc.Run(e.ctx, "cli", func(ev services.ProgressEvent) {
		switch ev.Type {
		case services.EventStageStarted:
			e.logger.Info("stage started", "stage", ev.Stage)
		case services.EventItemFailed:
			e.logger.Warn("delete failed", "collection", ev.Collection, "id", ev.ID, "error", ev.Error)
		case services.EventStageFinished:
			e.logger.Info("stage finished", "stage", ev.Stage, "succeeded", ev.Succeeded, "failed", ev.Failed)
		}
	})
	if err := writeReport(out, result); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d records could not be deleted", len(result.Failed))
	}
	return nil
}

func writeReport(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
