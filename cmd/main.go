package main

//
//  @title           Power position extractor API
//  @version         1.0
//  @description     Periodic intraday power position extraction with a lifecycle control surface.
//  @contact.name    API Support
//  @contact.url     https://github.com/athabaska/Gazprom-power
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        extraction
//  @tag.description Scheduler lifecycle and extraction files
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // trading location must resolve on hosts without a zoneinfo database

	"github.com/athabaska/Gazprom-power/config"
	_ "github.com/athabaska/Gazprom-power/docs" // swagger docs
	"github.com/athabaska/Gazprom-power/internal/app"
	"github.com/athabaska/Gazprom-power/internal/extraction"
	"github.com/athabaska/Gazprom-power/internal/logger"
	"github.com/athabaska/Gazprom-power/internal/scheduler"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown drives the scheduler from OS signals until the process is
// asked to stop, then stops the scheduler, shuts the HTTP server down and
// releases resources.
//
// Signals:
//   - SIGINT, SIGTERM: stop.
//   - SIGUSR1: pause extraction (not on Windows).
//   - SIGUSR2: continue extraction (not on Windows).
func gracefulShutdown(ctx context.Context, server *http.Server, ctl scheduler.Controller, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	hooks := make(chan os.Signal, 1)
	if sigs := lifecycleSignals(); len(sigs) > 0 {
		signal.Notify(hooks, sigs...)
		defer signal.Stop(hooks)
	}

wait:
	for {
		select {
		case sig := <-hooks:
			handleLifecycleSignal(ctl, sig)
		case <-quit:
			break wait
		}
	}

	logger.L().Info().Msg("shutting down")
	ctl.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

func handleLifecycleSignal(ctl scheduler.Controller, sig os.Signal) {
	switch sig {
	case pauseSignal:
		logger.L().Info().Str("signal", sig.String()).Msg("pause requested")
		ctl.Pause()
	case continueSignal:
		logger.L().Info().Str("signal", sig.String()).Msg("continue requested")
		ctl.Continue()
	}
}

// onceRunner is the part of the extractor the once mode needs.
type onceRunner interface {
	Extract(ctx context.Context)
	Wait()
	Stats() extraction.Stats
}

// runOnce runs a single cycle, waits for its retries and reports whether an
// artifact was written.
func runOnce(ctx context.Context, ext onceRunner) error {
	ext.Extract(ctx)
	ext.Wait()

	st := ext.Stats()
	if st.Succeeded == 0 {
		return errors.New("no extraction written")
	}
	logger.L().Info().Str("artifact", st.LastArtifact).Uint64("failed_fetches", st.Failed).Msg("extraction completed")
	return nil
}

// main is the entry point of the power position extractor.
//
// Modes (selected via --mode flag):
//   - service: runs the scheduler until SIGINT/SIGTERM and serves the control API.
//   - once:    runs one extraction cycle (with its retries) and exits.
//
// Flags:
//   - --mode: Execution mode ("service" or "once"). Default: "service".
//   - --port: Port for the control API. Defaults to value from config (SERVER_PORT).
func main() {
	warnings := config.LoadConfig()

	logger.Init()
	for _, w := range warnings {
		logger.L().Warn().Str("config_file", config.AppConfig.File).Msg(w)
	}

	mode := flag.String("mode", "service", "Mode: service or once")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for the control API")
	flag.Parse()

	switch *mode {
	case "once":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := app.InitializeApp(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		err = runOnce(ctx, a.Extractor)
		cleanup()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("extraction failed")
		}

	case "service":
		ctx := context.Background()
		a, cleanup, err := app.InitializeApp(ctx)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		a.Scheduler.Start()
		server := startServer(a.Router, *port)
		gracefulShutdown(ctx, server, a.Scheduler, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
