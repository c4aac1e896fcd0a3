package timer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frightfate/frightfate/internal/game/timer"
)

type tickEvent struct {
	questionNumber int
	remaining      int
}

// recordingSink captures countdown events. Decrement ticks arrive on a
// channel so tests can synchronize with the countdown goroutine; threshold
// events are recorded for later assertion.
type recordingSink struct {
	mu        sync.Mutex
	warnings  []tickEvent
	criticals []tickEvent

	tickCh    chan tickEvent
	expiredCh chan int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		tickCh:    make(chan tickEvent, 128),
		expiredCh: make(chan int, 8),
	}
}

func (s *recordingSink) TimerTick(q, remaining int) {
	s.tickCh <- tickEvent{q, remaining}
}

func (s *recordingSink) TimerWarning(q, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, tickEvent{q, remaining})
}

func (s *recordingSink) TimerCritical(q, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criticals = append(s.criticals, tickEvent{q, remaining})
}

func (s *recordingSink) TimerExpired(q int) {
	s.expiredCh <- q
}

// waitTick blocks until the sink sees a decrement tick for questionNumber
// with the wanted remaining value, skipping initial full-budget ticks from
// superseded runs.
func waitTick(t *testing.T, s *recordingSink, questionNumber, remaining int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.tickCh:
			if ev.questionNumber == questionNumber && ev.remaining == remaining {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for tick q=%d remaining=%d", questionNumber, remaining)
		}
	}
}

func waitExpired(t *testing.T, s *recordingSink, questionNumber int) {
	t.Helper()
	select {
	case q := <-s.expiredCh:
		assert.Equal(t, questionNumber, q)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for expiry of question %d", questionNumber)
	}
}

func TestCountdown_RunsToExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.Config{WarningSeconds: 2, CriticalSeconds: 1}, sink)

	cd.Start(3, 7)
	waitTick(t, sink, 7, 3) // initial full budget

	for remaining := 2; remaining >= 1; remaining-- {
		clock.Advance(time.Second)
		waitTick(t, sink, 7, remaining)
	}

	clock.Advance(time.Second)
	waitExpired(t, sink, 7)

	assert.False(t, cd.Running())
	assert.Equal(t, 0, cd.Remaining())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []tickEvent{{7, 2}}, sink.warnings)
	assert.Equal(t, []tickEvent{{7, 1}}, sink.criticals)
}

func TestCountdown_ThresholdsFireOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.Config{WarningSeconds: 4, CriticalSeconds: 2}, sink)

	cd.Start(6, 1)
	waitTick(t, sink, 1, 6)

	// Every remaining value from 4 down is at or below the warning
	// threshold; the signal still fires only once.
	for remaining := 5; remaining >= 1; remaining-- {
		clock.Advance(time.Second)
		waitTick(t, sink, 1, remaining)
	}
	clock.Advance(time.Second)
	waitExpired(t, sink, 1)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.warnings, 1)
	assert.Len(t, sink.criticals, 1)
	assert.Equal(t, tickEvent{1, 4}, sink.warnings[0])
	assert.Equal(t, tickEvent{1, 2}, sink.criticals[0])
}

func TestCountdown_ShortBudgetFiresBothThresholdsImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.DefaultConfig(), sink)

	// Budget already inside both thresholds: first decrement fires both,
	// once each.
	cd.Start(2, 3)
	waitTick(t, sink, 3, 2)

	clock.Advance(time.Second)
	waitTick(t, sink, 3, 1)
	clock.Advance(time.Second)
	waitExpired(t, sink, 3)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.warnings, 1)
	assert.Len(t, sink.criticals, 1)
}

func TestCountdown_RestartReplacesLiveTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.DefaultConfig(), sink)

	cd.Start(125, 1)
	cd.Start(300, 2)

	require.True(t, cd.Running())
	assert.Equal(t, 300, cd.Remaining())

	// Only the replacement run decrements.
	clock.Advance(time.Second)
	waitTick(t, sink, 2, 299)
	assert.Equal(t, 299, cd.Remaining())

	// The superseded run never produced a decrement.
	sink.mu.Lock()
	warnings := len(sink.warnings)
	sink.mu.Unlock()
	assert.Zero(t, warnings)

	cd.Cancel()
	assert.False(t, cd.Running())
}

func TestCountdown_RapidRepeatedStarts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.DefaultConfig(), sink)

	for i := 0; i < 10; i++ {
		cd.Start(100+i, i+1)
	}

	require.True(t, cd.Running())
	assert.Equal(t, 109, cd.Remaining())

	clock.Advance(time.Second)
	waitTick(t, sink, 10, 108)

	// After the decrement exactly one run is live and it belongs to the
	// final Start.
	assert.Equal(t, 108, cd.Remaining())
}

func TestCountdown_CancelIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	cd := timer.New(clock, timer.DefaultConfig(), sink)

	// Cancel before any start is a no-op.
	cd.Cancel()
	assert.False(t, cd.Running())

	cd.Start(60, 1)
	cd.Cancel()
	cd.Cancel()
	assert.False(t, cd.Running())
	assert.Equal(t, 0, cd.Remaining())

	// Cancel after natural expiry is also a no-op.
	cd.Start(1, 2)
	waitTick(t, sink, 2, 1)
	clock.Advance(time.Second)
	waitExpired(t, sink, 2)
	cd.Cancel()
	assert.False(t, cd.Running())
}
