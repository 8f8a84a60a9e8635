package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/athabaska/Gazprom-power/config"
	"github.com/athabaska/Gazprom-power/internal/domain/dto"
	"github.com/athabaska/Gazprom-power/internal/scheduler"
	"github.com/athabaska/Gazprom-power/internal/storage"
)

// useConfig installs a generator-backed configuration writing into a temp dir.
func useConfig(t *testing.T, mutate func(*config.Config)) config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := config.Config{
		Server: config.ServerConfig{Port: "0"},
		Extraction: config.ExtractionConfig{
			OutputFolder:    filepath.Join(dir, "extractions"),
			IntervalMinutes: 60,
			RetryDelay:      10 * time.Millisecond,
			Backoff:         "constant",
			DiagnosticsLog:  filepath.Join(dir, "logs", "diagnostics.log"),
		},
		Source: config.SourceConfig{Kind: config.SourceGenerator, Location: "UTC", TradesPerFetch: 2},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
	return cfg
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestInitializeApp_GeneratorEndToEnd(t *testing.T) {
	useConfig(t, nil)

	a, cleanup, err := InitializeApp(context.Background())
	if err != nil || a == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}
	defer cleanup()

	for path, want := range map[string]int{"/healthz": http.StatusOK, "/readyz": http.StatusOK, "/api/v1/status": http.StatusOK} {
		if w := serve(a.Router, http.MethodGet, path); w.Code != want {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}
	if a.Scheduler.State() != scheduler.Stopped {
		t.Fatalf("scheduler should be returned stopped")
	}

	a.Scheduler.Start()

	deadline := time.Now().Add(3 * time.Second)
	for a.Extractor.Stats().Succeeded == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	w := serve(a.Router, http.MethodGet, "/api/v1/extractions")
	var files []dto.ExtractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &files); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one extraction file, got %s", w.Body.String())
	}

	if w := serve(a.Router, http.MethodPost, "/api/v1/pause"); w.Code != http.StatusOK {
		t.Fatalf("pause status=%d", w.Code)
	}
	if !a.Extractor.Paused() {
		t.Fatalf("extractor should be paused")
	}
}

func TestInitializeApp_PostgresSource(t *testing.T) {
	useConfig(t, func(c *config.Config) { c.Source.Kind = config.SourcePostgres })

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	mock.ExpectPing()
	mock.ExpectClose()

	old := postgresOpener
	postgresOpener = func(context.Context, config.PostgresConfig) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { postgresOpener = old })

	a, cleanup, err := InitializeApp(context.Background())
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	if w := serve(a.Router, http.MethodGet, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}
	cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitializeApp_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		setup  func(t *testing.T) sqlmock.Sqlmock
	}{
		{
			name:   "postgres unreachable",
			mutate: func(c *config.Config) { c.Source.Kind = config.SourcePostgres },
			setup: func(t *testing.T) sqlmock.Sqlmock {
				old := postgresOpener
				postgresOpener = func(context.Context, config.PostgresConfig) (*sql.DB, error) {
					return nil, errors.New("connection refused")
				}
				t.Cleanup(func() { postgresOpener = old })
				return nil
			},
		},
		{
			name:   "unknown source",
			mutate: func(c *config.Config) { c.Source.Kind = "fax" },
		},
		{
			name:   "bad trading location",
			mutate: func(c *config.Config) { c.Source.Location = "Mars/Olympus" },
		},
		{
			name: "redis unreachable closes the database",
			mutate: func(c *config.Config) {
				c.Postgres.Archive = true
				c.Redis.Addr = "127.0.0.1:1"
			},
			setup: func(t *testing.T) sqlmock.Sqlmock {
				db, mock, err := sqlmock.New()
				if err != nil {
					t.Fatalf("sqlmock new: %v", err)
				}
				mock.ExpectClose()
				oldPG, oldRedis := postgresOpener, redisOpener
				postgresOpener = func(context.Context, config.PostgresConfig) (*sql.DB, error) { return db, nil }
				redisOpener = func(context.Context, config.RedisConfig) (*storage.RedisSnapshot, error) {
					return nil, errors.New("dial tcp 127.0.0.1:1: connection refused")
				}
				t.Cleanup(func() { postgresOpener, redisOpener = oldPG, oldRedis })
				return mock
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			useConfig(t, tc.mutate)
			var mock sqlmock.Sqlmock
			if tc.setup != nil {
				mock = tc.setup(t)
			}

			a, cleanup, err := InitializeApp(context.Background())
			if err == nil || a != nil || cleanup != nil {
				if cleanup != nil {
					cleanup()
				}
				t.Fatalf("expected error from InitializeApp")
			}
			if mock != nil {
				if err := mock.ExpectationsWereMet(); err != nil {
					t.Fatalf("unmet expectations: %v", err)
				}
			}
		})
	}
}
