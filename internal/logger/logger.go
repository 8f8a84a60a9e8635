package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

const serviceName = "power-position"

var (
	base  zerolog.Logger
	ready atomic.Bool
	// out is shared with the diagnostics logger so both honour LOG_PRETTY.
	out io.Writer = os.Stdout
)

// Init configures the global logger.
//
// Environment variables (optional):
//   - LOG_LEVEL: trace|debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false), console output instead of JSON
func Init() {
	initTo(os.Stdout)
}

func initTo(w io.Writer) {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if cast.ToBool(os.Getenv("LOG_PRETTY")) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	out = w
	base = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	ready.Store(true)
}

// L returns the global logger, initializing it on first use.
func L() *zerolog.Logger {
	if !ready.Load() {
		Init()
	}
	return &base
}

// parseLevel maps LOG_LEVEL to a zerolog level. Unknown values mean info.
func parseLevel(s string) zerolog.Level {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "warning":
		return zerolog.WarnLevel
	case "err":
		return zerolog.ErrorLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}
