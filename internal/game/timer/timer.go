// Package timer owns the single live per-question countdown. Starting a
// new countdown always cancels the previous one, so at most one clock is
// ticking at any instant.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	NewTimer(d time.Duration) clockwork.Timer
}

// Sink receives countdown events. Calls arrive on the countdown goroutine;
// implementations must not call back into the Countdown synchronously from
// within a callback other than Cancel/Start, which are safe.
//
// Every event carries the question number the countdown was started for,
// so consumers can discard events from a superseded run.
type Sink interface {
	TimerTick(questionNumber, remaining int)
	TimerWarning(questionNumber, remaining int)
	TimerCritical(questionNumber, remaining int)
	TimerExpired(questionNumber int)
}

// Config holds the graduated warning thresholds in seconds.
type Config struct {
	WarningSeconds  int
	CriticalSeconds int
}

// DefaultConfig matches the shipped thresholds.
func DefaultConfig() Config {
	return Config{WarningSeconds: 30, CriticalSeconds: 10}
}

// Countdown drives one live countdown at a time.
type Countdown struct {
	clock Clock
	cfg   Config
	sink  Sink

	mu     sync.Mutex
	active *run
}

// run is the state of one countdown instance. All fields are guarded by
// the owning Countdown's mutex.
type run struct {
	questionNumber int
	remaining      int
	warned         bool
	criticaled     bool
	stopped        bool // cancelled or expired
	cancelCh       chan struct{}
}

// New creates a Countdown. A nil clock gets the real clock.
func New(clock Clock, cfg Config, sink Sink) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Countdown{clock: clock, cfg: cfg, sink: sink}
}

// Start begins a countdown of limitSeconds for the given question,
// cancelling any live countdown first. The full remaining time is emitted
// immediately so displays show the budget before the first decrement.
func (c *Countdown) Start(limitSeconds, questionNumber int) {
	if limitSeconds < 1 {
		limitSeconds = 1
	}

	c.mu.Lock()
	c.stopLocked()
	r := &run{
		questionNumber: questionNumber,
		remaining:      limitSeconds,
		cancelCh:       make(chan struct{}),
	}
	c.active = r
	// Arm the first tick before releasing the lock so a fake clock sees
	// the waiter as soon as Start returns.
	t := c.clock.NewTimer(time.Second)
	c.mu.Unlock()

	log.Debug().
		Int("question_number", questionNumber).
		Int("limit_sec", limitSeconds).
		Msg("countdown started")

	go c.loop(r, t, limitSeconds)
}

// Cancel stops the live countdown, if any. It is idempotent and safe to
// call on an already-expired or never-started countdown.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	c.stopLocked()
	c.active = nil
	c.mu.Unlock()
}

// stopLocked marks the active run stopped and wakes its goroutine.
func (c *Countdown) stopLocked() {
	if c.active == nil || c.active.stopped {
		return
	}
	c.active.stopped = true
	close(c.active.cancelCh)
}

// Running reports whether a countdown is currently live.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && !c.active.stopped
}

// Remaining returns the live countdown's remaining seconds, or 0.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.stopped {
		return 0
	}
	return c.active.remaining
}

type event struct {
	kind      string // tick, warning, critical, expired
	remaining int
}

func (c *Countdown) loop(r *run, t clockwork.Timer, limitSeconds int) {
	defer t.Stop()

	// Show the full budget before the first decrement. Emitted from the
	// countdown goroutine so Start never calls into the sink while the
	// caller still holds its own locks.
	c.mu.Lock()
	stopped := r.stopped
	c.mu.Unlock()
	if !stopped {
		c.sink.TimerTick(r.questionNumber, limitSeconds)
	}

	for {
		select {
		case <-r.cancelCh:
			// Covers both Cancel and a superseding Start.
			return
		case <-t.Chan():
		}

		events, done := c.tick(r)
		if !done {
			// Re-arm before emitting so a consumer reacting to the tick
			// observes the next deadline already set.
			t.Reset(time.Second)
		}
		for _, ev := range events {
			c.emit(r.questionNumber, ev)
		}
		if done {
			return
		}
	}
}

// tick advances the run by one second and computes which events to emit.
// Threshold events are guarded so they fire exactly once per run even if
// ticks were coalesced past the exact threshold value.
func (c *Countdown) tick(r *run) ([]event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.stopped {
		return nil, true
	}

	r.remaining--
	events := []event{{kind: "tick", remaining: r.remaining}}

	if !r.warned && r.remaining <= c.cfg.WarningSeconds {
		r.warned = true
		events = append(events, event{kind: "warning", remaining: r.remaining})
	}
	if !r.criticaled && r.remaining <= c.cfg.CriticalSeconds {
		r.criticaled = true
		events = append(events, event{kind: "critical", remaining: r.remaining})
	}
	if r.remaining <= 0 {
		r.stopped = true
		events = append(events, event{kind: "expired"})
		return events, true
	}
	return events, false
}

func (c *Countdown) emit(questionNumber int, ev event) {
	switch ev.kind {
	case "tick":
		c.sink.TimerTick(questionNumber, ev.remaining)
	case "warning":
		c.sink.TimerWarning(questionNumber, ev.remaining)
	case "critical":
		c.sink.TimerCritical(questionNumber, ev.remaining)
	case "expired":
		log.Debug().Int("question_number", questionNumber).Msg("countdown expired")
		c.sink.TimerExpired(questionNumber)
	}
}
