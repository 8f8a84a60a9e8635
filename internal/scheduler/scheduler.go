// Package scheduler fires extraction cycles on a fixed period and exposes the
// lifecycle hooks a service host drives: start, stop, pause and continue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/athabaska/Gazprom-power/internal/logger"
)

// State of a Scheduler.
type State string

const (
	Stopped State = "stopped"
	Running State = "running"
	Paused  State = "paused"
)

var (
	// ErrStopped is returned by Trigger when the scheduler is not running.
	ErrStopped = errors.New("scheduler is stopped")
	// ErrPaused is returned by Trigger while cycles are paused.
	ErrPaused = errors.New("scheduler is paused")
	// ErrNotRunning is returned by TryPause unless the scheduler is running.
	ErrNotRunning = errors.New("scheduler is not running")
	// ErrNotPaused is returned by TryContinue unless the scheduler is paused.
	ErrNotPaused = errors.New("scheduler is not paused")
)

// Controller is the lifecycle surface of the service. None of its methods
// fail; invalid transitions are logged and ignored.
type Controller interface {
	Start()
	Stop()
	Pause()
	Continue()
	State() State
}

// Cycle is one extraction run plus its pause gate.
type Cycle interface {
	Extract(ctx context.Context)
	Pause()
	Continue()
}

// Scheduler runs a Cycle immediately on Start and then every interval.
//
// Every tick starts the cycle on its own goroutine without waiting for the
// previous one, so a slow upstream never delays the timer. Stop is final: the
// closer (the diagnostics log) is released and a later Start is ignored.
type Scheduler struct {
	cycle    Cycle
	interval time.Duration
	closer   io.Closer
	log      *zerolog.Logger

	mu       sync.Mutex
	state    State
	finished bool
	done     chan struct{}
	loop     sync.WaitGroup
}

var _ Controller = (*Scheduler)(nil)

// New creates a stopped scheduler. closer may be nil; log nil uses the global logger.
func New(cycle Cycle, interval time.Duration, closer io.Closer, log *zerolog.Logger) *Scheduler {
	if log == nil {
		log = logger.L()
	}
	return &Scheduler{
		cycle:    cycle,
		interval: interval,
		closer:   closer,
		log:      log,
		state:    Stopped,
	}
}

// Interval returns the period between two scheduled cycles.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// State implements Controller.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start implements Controller.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		s.log.Warn().Msg("scheduler was stopped, start ignored")
		return
	}
	if s.state != Stopped {
		s.log.Debug().Str("state", string(s.state)).Msg("scheduler already started")
		return
	}

	s.state = Running
	s.done = make(chan struct{})
	s.loop.Add(1)
	go s.run(s.done)
	go s.cycle.Extract(context.Background())

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
}

func (s *Scheduler) run(done <-chan struct{}) {
	defer s.loop.Done()

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
			// in-flight cycles are not cancelled by Stop
			go s.cycle.Extract(context.Background())
		}
	}
}

// Stop implements Controller. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	wasRunning := s.state != Stopped
	s.state = Stopped
	if wasRunning {
		close(s.done)
	}
	s.mu.Unlock()

	s.loop.Wait()
	s.log.Info().Msg("scheduler stopped")

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.log.Error().Err(err).Msg("close diagnostics log")
		}
	}
}

// Pause implements Controller. Ticks keep firing; the cycles they start do nothing.
func (s *Scheduler) Pause() {
	if err := s.TryPause(); err != nil {
		s.log.Warn().Str("state", string(s.State())).Msg("pause ignored")
	}
}

// TryPause pauses a running scheduler. The state check and the transition
// happen under one lock, so of two concurrent callers only one succeeds.
func (s *Scheduler) TryPause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return fmt.Errorf("%w: state is %s", ErrNotRunning, s.state)
	}
	s.cycle.Pause()
	s.state = Paused
	s.log.Info().Msg("scheduler paused")
	return nil
}

// Continue implements Controller.
func (s *Scheduler) Continue() {
	if err := s.TryContinue(); err != nil {
		s.log.Warn().Str("state", string(s.State())).Msg("continue ignored")
	}
}

// TryContinue lifts a pause, or reports ErrNotPaused.
func (s *Scheduler) TryContinue() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return fmt.Errorf("%w: state is %s", ErrNotPaused, s.state)
	}
	s.cycle.Continue()
	s.state = Running
	s.log.Info().Msg("scheduler continued")
	return nil
}

// Trigger starts one cycle now, outside the timer.
func (s *Scheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Stopped:
		return ErrStopped
	case Paused:
		return ErrPaused
	}
	go s.cycle.Extract(context.Background())
	return nil
}
