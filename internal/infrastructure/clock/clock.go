// Package clock provides the wall clock used by the bridge and a fake clock
// for tests that must not sleep.
package clock

import (
	"sync"
	"time"

	"browser-bridge/internal/application/port/output"

	"github.com/jonboulle/clockwork"
)

// NewReal returns the wall clock.
func NewReal() output.ClockPort {
	return clockwork.NewRealClock()
}

var _ output.ClockPort = (*Fake)(nil)

// Fake advances its own time by d on every After call and fires
// immediately, so wait loops run to completion without sleeping.
type Fake struct {
	clock *clockwork.FakeClock

	mu     sync.Mutex
	sleeps []time.Duration
}

func NewFake(start time.Time) *Fake {
	return &Fake{clock: clockwork.NewFakeClockAt(start)}
}

func (f *Fake) Now() time.Time {
	return f.clock.Now()
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.mu.Unlock()

	if d <= 0 {
		ch := make(chan time.Time, 1)
		ch <- f.clock.Now()
		return ch
	}

	// The timer is registered before the advance, so it has already
	// fired when the channel is returned.
	ch := f.clock.After(d)
	f.clock.Advance(d)
	return ch
}

// Advance moves the clock without recording a sleep.
func (f *Fake) Advance(d time.Duration) {
	f.clock.Advance(d)
}

// Sleeps returns every duration passed to After, in order.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

// Elapsed is the sum of all recorded sleeps.
func (f *Fake) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range f.Sleeps() {
		total += d
	}
	return total
}
