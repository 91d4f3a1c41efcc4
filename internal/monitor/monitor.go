// Package monitor runs the poll, convert, decide, actuate, report cycle.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/multierr"

	"github.com/sweeney/thermo-fan/internal/clock"
	"github.com/sweeney/thermo-fan/internal/logic"
	"github.com/sweeney/thermo-fan/internal/status"
)

// Sampler obtains one raw ADC sample.
type Sampler interface {
	Read(ctx context.Context) (uint8, error)
}

// Actuator drives the output lines for a state.
type Actuator interface {
	Apply(s logic.State) error
}

// Reporter emits the telemetry for a decision.
type Reporter interface {
	Report(d logic.Decision) error
}

// Loop sequences one cycle per period. Not safe for concurrent use.
type Loop struct {
	Sampler    Sampler
	Controller *logic.Controller
	Actuator   Actuator
	Reporter   Reporter
	Sleeper    clock.Sleeper

	// Period is the delay after each cycle.
	Period time.Duration

	// Heartbeat is the interval between heartbeat log lines. Zero disables.
	Heartbeat time.Duration

	// Tracker, if set, receives every decision and cycle error.
	Tracker *status.Tracker

	// Now defaults to time.Now.
	Now func() time.Time
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Cycle runs one sample, decision, actuation and report. A sampling error
// skips the rest of the cycle and leaves the actuator as it was. Actuator
// and report errors are both attempted and returned combined.
func (l *Loop) Cycle(ctx context.Context) (logic.Decision, error) {
	raw, err := l.Sampler.Read(ctx)
	if err != nil {
		return logic.Decision{}, fmt.Errorf("sample: %w", err)
	}

	d := l.Controller.Process(logic.Input{Raw: raw, Time: l.now()})
	if d.Changed {
		log.Printf("actuator: %s temp=%.1f raw=%d", d.State, d.Temp, d.Raw)
	}

	var errs error
	if err := l.Actuator.Apply(d.State); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("actuate: %w", err))
	}
	if err := l.Reporter.Report(d); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("report: %w", err))
	}

	if l.Tracker != nil {
		l.Tracker.Update(d, l.Controller.CountsSnapshot())
	}
	return d, errs
}

// Run repeats Cycle followed by a Period delay until ctx is done. Cycle
// errors are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) {
	for {
		if _, err := l.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("cycle error: %v", err)
			if l.Tracker != nil {
				l.Tracker.RecordError(err)
			}
		}

		if hb := l.Controller.CheckHeartbeat(l.now(), l.Heartbeat); hb != nil {
			log.Printf("heartbeat: uptime=%v cycles=%d on=%d off=%d transitions=%d alerts=%d last=%s temp=%.1f",
				hb.Uptime, hb.Counts.Cycles, hb.Counts.On, hb.Counts.Off, hb.Counts.Transitions, hb.Counts.Alerts,
				hb.Last.State, hb.Last.Temp)
		}

		if err := l.Sleeper.Sleep(ctx, l.Period); err != nil {
			return
		}
	}
}
