package storage

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sink persists one artifact: a fixed header line followed by lines, in order.
// A nil or empty lines slice still produces a header-only artifact.
type Sink interface {
	Dump(ctx context.Context, name string, lines []string) error
}

// lineEnding is the host's default line terminator.
var lineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// MultiSink writes every artifact to all of its sinks concurrently.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink fans out to sinks. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Dump implements Sink. It waits for every sink and returns the first error.
// Sinks share the caller's context: one failing sink never cancels the others.
func (m *MultiSink) Dump(ctx context.Context, name string, lines []string) error {
	var g errgroup.Group
	for _, s := range m.sinks {
		g.Go(func() error {
			return s.Dump(ctx, name, lines)
		})
	}
	return g.Wait()
}

// Len returns the number of sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }
