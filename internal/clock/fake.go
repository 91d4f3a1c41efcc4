package clock

import (
	"context"
	"time"
)

// FakeSleeper records requested durations without blocking.
type FakeSleeper struct {
	// Calls contains every requested duration in order.
	Calls []time.Duration

	// OnSleep, if set, is called after each recorded sleep. Tests use it to
	// cancel a context after a number of cycles.
	OnSleep func(n int, d time.Duration)
}

// Sleep records d and returns ctx.Err().
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.Calls = append(f.Calls, d)
	if f.OnSleep != nil {
		f.OnSleep(len(f.Calls), d)
	}
	return ctx.Err()
}

// Total returns the sum of all recorded durations.
func (f *FakeSleeper) Total() time.Duration {
	var total time.Duration
	for _, d := range f.Calls {
		total += d
	}
	return total
}
