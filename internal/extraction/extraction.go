// Package extraction runs one fetch, aggregate, format and persist cycle and
// owns the retry policy applied when the upstream fetch fails.
package extraction

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/athabaska/Gazprom-power/internal/aggregation"
	"github.com/athabaska/Gazprom-power/internal/domain/models"
	"github.com/athabaska/Gazprom-power/internal/logger"
	"github.com/athabaska/Gazprom-power/internal/report"
	"github.com/athabaska/Gazprom-power/internal/source"
	"github.com/athabaska/Gazprom-power/internal/storage"
)

// Backoff kinds accepted by Options.Backoff.
const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// DefaultRetryDelay is used when Options.RetryDelay is not positive.
const DefaultRetryDelay = 5 * time.Second

// Options tunes the retry policy.
type Options struct {
	// RetryDelay is the wait before a failed cycle runs again.
	RetryDelay time.Duration
	// MaxAttempts caps the retries of one chain. 0 retries forever.
	MaxAttempts int
	// Backoff is BackoffConstant (default) or BackoffExponential.
	Backoff string
	// MaxRetryDelay caps the exponential delay. 0 means no cap.
	MaxRetryDelay time.Duration
	// Now returns the run time. Defaults to time.Now.
	Now func() time.Time
}

// Run identifies one pass through the cycle. Retries get a new Run.
type Run struct {
	ID      string
	At      time.Time
	Attempt int
}

// Stats is a snapshot of what the extractor has done since it was created.
// Failed counts every failed fetch attempt and every failed write.
type Stats struct {
	Succeeded    uint64
	Failed       uint64
	Skipped      uint64
	LastArtifact string
	LastSuccess  time.Time
}

// Extractor runs extraction cycles. It is safe for concurrent use: cycles
// started by overlapping ticks or retries run independently.
type Extractor struct {
	source source.TradeSource
	sink   storage.Sink
	log    *zerolog.Logger
	opts   Options

	paused  atomic.Bool
	pending sync.WaitGroup

	succeeded atomic.Uint64
	failed    atomic.Uint64
	skipped   atomic.Uint64

	mu          sync.Mutex
	lastName    string
	lastSuccess time.Time
}

// New creates an extractor. A nil log falls back to the global logger.
func New(src source.TradeSource, sink storage.Sink, log *zerolog.Logger, opts Options) *Extractor {
	if log == nil {
		log = logger.L()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Backoff == "" {
		opts.Backoff = BackoffConstant
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Extractor{source: src, sink: sink, log: log, opts: opts}
}

// Pause makes subsequent cycles, retries included, return without doing anything.
func (e *Extractor) Pause() { e.paused.Store(true) }

// Continue lifts a Pause.
func (e *Extractor) Continue() { e.paused.Store(false) }

// Paused reports whether cycles are currently skipped.
func (e *Extractor) Paused() bool { return e.paused.Load() }

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

// Extract runs one cycle. It returns once the cycle has written its artifact
// or failed; a failed fetch schedules the retry on its own goroutine and
// Extract does not wait for it.
//
// Errors never escape: they are logged and the cycle ends.
func (e *Extractor) Extract(ctx context.Context) {
	e.run(ctx, e.newBackoff(), 1)
}

// Wait blocks until every retry scheduled so far has run.
func (e *Extractor) Wait() {
	e.pending.Wait()
}

// Stats returns counters and the last written artifact.
func (e *Extractor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Succeeded:    e.succeeded.Load(),
		Failed:       e.failed.Load(),
		Skipped:      e.skipped.Load(),
		LastArtifact: e.lastName,
		LastSuccess:  e.lastSuccess,
	}
}

// newBackoff builds the delay sequence shared by one chain of retries.
func (e *Extractor) newBackoff() retry.Backoff {
	var b retry.Backoff
	switch e.opts.Backoff {
	case BackoffExponential:
		b = retry.NewExponential(e.opts.RetryDelay)
		if e.opts.MaxRetryDelay > 0 {
			b = retry.WithCappedDuration(e.opts.MaxRetryDelay, b)
		}
	default:
		b = retry.NewConstant(e.opts.RetryDelay)
	}
	if e.opts.MaxAttempts > 0 {
		b = retry.WithMaxRetries(uint64(e.opts.MaxAttempts), b)
	}
	return b
}

func (e *Extractor) run(ctx context.Context, b retry.Backoff, attempt int) {
	if e.Paused() {
		e.skipped.Add(1)
		e.log.Debug().Int("attempt", attempt).Msg("extraction paused, cycle skipped")
		return
	}

	run := Run{ID: uuid.NewString(), At: e.opts.Now(), Attempt: attempt}
	log := e.log.With().
		Str("run_id", run.ID).
		Time("run_at", run.At).
		Int("attempt", run.Attempt).
		Logger()

	log.Info().Msg("extraction started")

	trades, err := e.fetch(ctx, run.At)
	if err != nil {
		e.failed.Add(1)
		delay, stop := b.Next()
		if stop {
			log.Error().Err(err).Msg("fetch trades failed, giving up")
			return
		}
		log.Error().Err(err).Dur("retry_in", delay).Msg("fetch trades failed, retry scheduled")
		e.retryAfter(ctx, b, attempt+1, delay)
		return
	}

	e.persist(ctx, &log, run, trades)
}

// fetch turns a panicking source into a failed fetch.
func (e *Extractor) fetch(ctx context.Context, at time.Time) (trades []models.Trade, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trade source panicked: %v", r)
		}
	}()
	return e.source.FetchTrades(ctx, at)
}

func (e *Extractor) retryAfter(ctx context.Context, b retry.Backoff, attempt int, delay time.Duration) {
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()

		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			e.log.Warn().Err(ctx.Err()).Int("attempt", attempt).Msg("retry cancelled")
			return
		case <-t.C:
		}

		e.run(ctx, b, attempt)
	}()
}

func (e *Extractor) persist(ctx context.Context, log *zerolog.Logger, run Run, trades []models.Trade) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("extraction cycle panicked")
		}
	}()

	agg := aggregation.Aggregate(trades)
	if !aggregation.IsStandardDay(agg) {
		log.Warn().
			Int("periods", agg.Len()).
			Int("expected", aggregation.ExpectedPeriods).
			Msg("unexpected number of periods")
	}

	lines := report.Lines(agg, run.At)
	name := report.ArtifactName(run.At)

	if err := e.sink.Dump(ctx, name, lines); err != nil {
		e.failed.Add(1)
		log.Error().Err(err).Str("artifact", name).Msg("write extraction failed")
		return
	}

	e.succeeded.Add(1)
	e.mu.Lock()
	e.lastName, e.lastSuccess = name, run.At
	e.mu.Unlock()

	log.Info().
		Str("artifact", name).
		Int("trades", len(trades)).
		Int("periods", agg.Len()).
		Msg("extraction written")
}
