package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package time source. Tests replace it with SetClock.
var clock clockwork.Clock = clockwork.NewRealClock()

// Now returns the current time of the package clock.
func Now() time.Time { return clock.Now() }

// Since returns the time elapsed on the package clock since t.
func Since(t time.Time) time.Duration { return clock.Since(t) }

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
