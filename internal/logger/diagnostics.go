package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Diagnostics is the extraction log: every event goes to the global output
// and is appended to a file that survives restarts.
//
// It is shared by concurrently running extraction cycles. Each event is
// written in one locked call, so lines never interleave.
type Diagnostics struct {
	file *lockedFile
	log  zerolog.Logger
}

// OpenDiagnostics opens (or creates) path in append mode and returns a logger
// writing to it and to the global output at the global level.
func OpenDiagnostics(path string) (*Diagnostics, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create diagnostics dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics log: %w", err)
	}
	return newDiagnostics(f, L().GetLevel()), nil
}

func newDiagnostics(w io.WriteCloser, level zerolog.Level) *Diagnostics {
	lf := &lockedFile{w: w}
	return &Diagnostics{
		file: lf,
		log: zerolog.New(zerolog.MultiLevelWriter(out, lf)).
			With().Timestamp().Str("component", "extractor").Logger().Level(level),
	}
}

// Logger returns the diagnostics logger.
func (d *Diagnostics) Logger() *zerolog.Logger { return &d.log }

// Close releases the file. Events logged afterwards only reach the global output.
func (d *Diagnostics) Close() error { return d.file.Close() }

// lockedFile serialises writes and silently drops them once closed, so cycles
// still running after Stop do not fail on a closed descriptor.
type lockedFile struct {
	mu     sync.Mutex
	w      io.WriteCloser
	closed bool
}

func (f *lockedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return len(p), nil
	}
	return f.w.Write(p)
}

func (f *lockedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.w.Close()
}
