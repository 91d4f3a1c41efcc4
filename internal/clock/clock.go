// Package clock provides the sleep primitive used between control cycles
// and inside the ADC handshake.
package clock

import (
	"context"
	"time"
)

// Sleeper blocks for a duration. Sleep returns ctx.Err() if the context is
// done before the duration elapses.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Timer sleeps on a runtime timer, yielding the CPU.
type Timer struct{}

// Sleep waits for d or until ctx is done.
func (Timer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Spin busy-waits on the monotonic clock without yielding, like the
// firmware's calibrated delay loop.
type Spin struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sleep spins until d has elapsed or ctx is done.
func (s Spin) Sleep(ctx context.Context, d time.Duration) error {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	deadline := now().Add(d)
	for now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// New returns the Sleeper for the named mode: "spin" or "sleep".
func New(mode string) Sleeper {
	if mode == ModeSpin {
		return Spin{}
	}
	return Timer{}
}

// Delay modes.
const (
	ModeSleep = "sleep"
	ModeSpin  = "spin"
)
