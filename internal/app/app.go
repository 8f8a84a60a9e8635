package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/athabaska/Gazprom-power/config"
	"github.com/athabaska/Gazprom-power/internal/api"
	"github.com/athabaska/Gazprom-power/internal/extraction"
	"github.com/athabaska/Gazprom-power/internal/logger"
	"github.com/athabaska/Gazprom-power/internal/report"
	"github.com/athabaska/Gazprom-power/internal/scheduler"
	"github.com/athabaska/Gazprom-power/internal/source"
	"github.com/athabaska/Gazprom-power/internal/storage"
)

// App is the wired service.
type App struct {
	Router    *gin.Engine
	Scheduler *scheduler.Scheduler
	Extractor *extraction.Extractor
}

// Indirections overridden in tests to avoid real connections.
var (
	redisOpener = func(ctx context.Context, cfg config.RedisConfig) (*storage.RedisSnapshot, error) {
		return storage.NewRedisSnapshot(ctx, cfg.Addr, cfg.Password, cfg.DB, cfg.Prefix, report.Header, cfg.TTL)
	}
	diagnosticsOpener = logger.OpenDiagnostics
)

// InitializeApp sets up all application dependencies from config.AppConfig
// and returns the wired App, a cleanup function for graceful shutdown, and
// any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL when the trade source or the archive sink needs it.
//   - Builds the trade source and the output sinks (CSV folder, optional Redis and archive).
//   - Opens the diagnostics log and creates the extractor and its scheduler.
//   - Configures the Gin router with the control API, health and readiness probes.
//
// The scheduler is returned stopped. Cleanup stops it, which releases the
// diagnostics log, then closes the connections.
func InitializeApp(ctx context.Context) (*App, func(), error) {
	cfg := config.AppConfig

	var closers []func()
	fail := func(err error) (*App, func(), error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, nil, err
	}

	var db *sql.DB
	if cfg.Source.Kind == config.SourcePostgres || cfg.Postgres.Archive {
		var err error
		db, err = postgresOpener(ctx, cfg.Postgres)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize postgres: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
	}

	src, err := source.New(cfg.Source, db)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize trade source: %w", err))
	}

	csv, err := storage.NewCSVWriter(cfg.Extraction.OutputFolder, report.Header)
	if err != nil {
		return fail(err)
	}
	sinks := []storage.Sink{csv}

	if cfg.Redis.Enabled() {
		snap, err := redisOpener(ctx, cfg.Redis)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize redis: %w", err))
		}
		closers = append(closers, func() { _ = snap.Close() })
		sinks = append(sinks, snap)
	}
	if cfg.Postgres.Archive {
		sinks = append(sinks, storage.NewPostgresArchive(db))
	}

	diag, err := diagnosticsOpener(cfg.Extraction.DiagnosticsLog)
	if err != nil {
		return fail(err)
	}

	ext := extraction.New(src, storage.NewMultiSink(sinks...), diag.Logger(), extraction.Options{
		RetryDelay:    cfg.Extraction.RetryDelay,
		MaxAttempts:   cfg.Extraction.MaxAttempts,
		Backoff:       cfg.Extraction.Backoff,
		MaxRetryDelay: cfg.Extraction.MaxRetryDelay,
	})
	sched := scheduler.New(ext, cfg.Extraction.Interval(), diag, diag.Logger())

	handler := api.NewHandler(sched, ext, csv, api.Settings{
		IntervalMinutes: cfg.Extraction.IntervalMinutes,
		OutputFolder:    cfg.Extraction.OutputFolder,
		Source:          cfg.Source.Kind,
		RetryDelayMs:    cfg.Extraction.RetryDelay.Milliseconds(),
		MaxAttempts:     cfg.Extraction.MaxAttempts,
	})
	router := api.NewRouter(handler)

	checks := []api.ReadinessCheck{{Name: "output_folder", Check: csv.Writable}}
	if db != nil {
		checks = append(checks, api.ReadinessCheck{Name: "postgres", Check: db.Ping})
	}
	api.NewHealthHandler(checks...).Register(router)

	logger.L().Info().
		Str("source", cfg.Source.Kind).
		Str("output_folder", cfg.Extraction.OutputFolder).
		Int("sinks", len(sinks)).
		Dur("interval", cfg.Extraction.Interval()).
		Msg("application initialized")

	cleanup := func() {
		sched.Stop()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return &App{Router: router, Scheduler: sched, Extractor: ext}, cleanup, nil
}
