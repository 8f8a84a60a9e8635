package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	CSV_FOLDER=extractions
//	EXTRACT_FREQUENCY=5
//	RETRY_DELAY_MS=5000
//	TRADING_SOURCE=generator
//	SERVER_PORT=8080
type Config struct {
	Server     ServerConfig     // HTTP control API
	Extraction ExtractionConfig // Scheduler, retry and output settings
	Source     SourceConfig     // Upstream trading service
	Postgres   PostgresConfig   // Used when Source.Kind is "postgres"
	Redis      RedisConfig      // Optional snapshot sink
	File       string           // Config file defaults are written back to
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string
}

// ExtractionConfig drives the extraction cycle and its scheduler.
//
// Fields:
//   - OutputFolder: where extraction files are written (default "extractions").
//   - IntervalMinutes: whole minutes between two scheduled cycles (default 5).
//   - RetryDelay: wait before re-running a cycle whose fetch failed (default 5s).
//   - MaxAttempts: retries per cycle before giving up, 0 = unbounded (default 0).
//   - Backoff: "constant" or "exponential" (default "constant").
//   - MaxRetryDelay: cap for exponential backoff.
//   - DiagnosticsLog: append-only log file path.
type ExtractionConfig struct {
	OutputFolder    string
	IntervalMinutes int
	RetryDelay      time.Duration
	MaxAttempts     int
	Backoff         string
	MaxRetryDelay   time.Duration
	DiagnosticsLog  string
}

// Interval returns the scheduling period.
func (e ExtractionConfig) Interval() time.Duration {
	return time.Duration(e.IntervalMinutes) * time.Minute
}

// SourceConfig selects and tunes the upstream trade source.
type SourceConfig struct {
	Kind           string  // generator, file or postgres
	Location       string  // IANA zone defining the trading day for the generator
	TradesPerFetch int     // generator
	FailureRate    float64 // generator, probability in [0,1] that a fetch fails
	TradesDir      string  // file
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
	Archive  bool // keep a copy of every artifact in position_reports
}

// DSN builds a lib/pq connection URL from the individual fields.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// RedisConfig enables the Redis snapshot sink when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Enabled reports whether the snapshot sink is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

const (
	keyFolder   = "CSV_FOLDER"
	keyInterval = "EXTRACT_FREQUENCY"

	// DefaultFolder is the output folder used when CSV_FOLDER is unset.
	DefaultFolder = "extractions"
	// DefaultInterval is the extraction frequency in minutes used when EXTRACT_FREQUENCY is unset or invalid.
	DefaultInterval = 5
)

// Source kinds accepted by TRADING_SOURCE.
const (
	SourceGenerator = "generator"
	SourceFile      = "file"
	SourcePostgres  = "postgres"
)

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// persistDefault writes key=value into the config file, keeping its other entries.
// Tests swap it to observe write-backs.
var persistDefault = func(path, key string, value any) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from the config file (CONFIG_FILE, default ".env"), if present.
//  3. Environment variables.
//
// Behavior:
//   - A missing CSV_FOLDER or a missing/invalid EXTRACT_FREQUENCY is not fatal:
//     the default is used, written back to the config file, and a warning is returned.
//   - Calls validateConfig() for everything else.
//
// Returns:
//   - []string: warnings for the caller to log once the logger is ready.
func LoadConfig() []string {
	viper.SetDefault("CONFIG_FILE", ".env")
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("RETRY_DELAY_MS", 5000)
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 0)
	viper.SetDefault("RETRY_BACKOFF", "constant")
	viper.SetDefault("RETRY_MAX_DELAY_MS", 300000)
	viper.SetDefault("DIAGNOSTICS_LOG", "diagnostics.log")

	viper.SetDefault("TRADING_SOURCE", SourceGenerator)
	viper.SetDefault("TRADING_LOCATION", "Europe/London")
	viper.SetDefault("TRADES_PER_FETCH", 2)
	viper.SetDefault("GENERATOR_FAILURE_RATE", 0.1)
	viper.SetDefault("TRADES_DIR", "./data/trades")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "powerposition")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_ARCHIVE", false)

	viper.SetDefault("REDIS_PREFIX", "powerposition")
	viper.SetDefault("REDIS_TTL", "24h")

	viper.AutomaticEnv()

	file := viper.GetString("CONFIG_FILE")
	viper.SetConfigFile(file)
	_ = viper.ReadInConfig() // ignore error if no config file

	var warnings []string

	folder := strings.TrimSpace(viper.GetString(keyFolder))
	if folder == "" {
		warnings = append(warnings, "csv folder is not set or empty, using default value")
		folder = DefaultFolder
		warnings = appendPersist(warnings, file, keyFolder, DefaultFolder)
	}

	interval, err := cast.ToIntE(viper.Get(keyInterval))
	if err != nil || interval < 1 {
		warnings = append(warnings, "extraction frequency is not set or has invalid format, using default value")
		interval = DefaultInterval
		warnings = appendPersist(warnings, file, keyInterval, DefaultInterval)
	}

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Extraction: ExtractionConfig{
			OutputFolder:    folder,
			IntervalMinutes: interval,
			RetryDelay:      time.Duration(viper.GetInt64("RETRY_DELAY_MS")) * time.Millisecond,
			MaxAttempts:     viper.GetInt("RETRY_MAX_ATTEMPTS"),
			Backoff:         strings.ToLower(viper.GetString("RETRY_BACKOFF")),
			MaxRetryDelay:   time.Duration(viper.GetInt64("RETRY_MAX_DELAY_MS")) * time.Millisecond,
			DiagnosticsLog:  viper.GetString("DIAGNOSTICS_LOG"),
		},
		Source: SourceConfig{
			Kind:           strings.ToLower(viper.GetString("TRADING_SOURCE")),
			Location:       viper.GetString("TRADING_LOCATION"),
			TradesPerFetch: viper.GetInt("TRADES_PER_FETCH"),
			FailureRate:    viper.GetFloat64("GENERATOR_FAILURE_RATE"),
			TradesDir:      viper.GetString("TRADES_DIR"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			Archive:  viper.GetBool("POSTGRES_ARCHIVE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Prefix:   viper.GetString("REDIS_PREFIX"),
			TTL:      viper.GetDuration("REDIS_TTL"),
		},
		File: file,
	}

	AppConfig.Postgres.URL = viper.GetString("POSTGRES_URL")
	if AppConfig.Postgres.URL == "" {
		AppConfig.Postgres.URL = AppConfig.Postgres.DSN()
	}

	validateConfig()

	return warnings
}

func appendPersist(warnings []string, file, key string, value any) []string {
	if err := persistDefault(file, key, value); err != nil {
		return append(warnings, fmt.Sprintf("error writing default %s to %s: %v", key, file, err))
	}
	return warnings
}

// validateConfig terminates the application when a setting has no sensible fallback.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects problems in a slice.
//   - If any are found, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var problems []string

	if AppConfig.Server.Port == "" {
		problems = append(problems, "SERVER_PORT is empty")
	}
	if AppConfig.Extraction.RetryDelay <= 0 {
		problems = append(problems, "RETRY_DELAY_MS must be positive")
	}
	if AppConfig.Extraction.MaxAttempts < 0 {
		problems = append(problems, "RETRY_MAX_ATTEMPTS must not be negative")
	}
	switch AppConfig.Extraction.Backoff {
	case "constant", "exponential":
	default:
		problems = append(problems, fmt.Sprintf("RETRY_BACKOFF %q is not constant|exponential", AppConfig.Extraction.Backoff))
	}

	switch AppConfig.Source.Kind {
	case SourceGenerator:
		if AppConfig.Source.FailureRate < 0 || AppConfig.Source.FailureRate > 1 {
			problems = append(problems, "GENERATOR_FAILURE_RATE must be within [0,1]")
		}
	case SourceFile:
		if AppConfig.Source.TradesDir == "" {
			problems = append(problems, "TRADES_DIR is empty")
		}
	case SourcePostgres:
	default:
		problems = append(problems, fmt.Sprintf("TRADING_SOURCE %q is not generator|file|postgres", AppConfig.Source.Kind))
	}

	if AppConfig.Source.Kind == SourcePostgres || AppConfig.Postgres.Archive {
		if AppConfig.Postgres.Host == "" || AppConfig.Postgres.Port == 0 || AppConfig.Postgres.User == "" || AppConfig.Postgres.DBName == "" {
			problems = append(problems, "POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER and POSTGRES_DB are required")
		}
	}

	if len(problems) > 0 {
		log.Fatalf("invalid configuration: %v\n", problems)
	}
}
