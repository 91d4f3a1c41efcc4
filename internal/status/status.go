// Package status provides a thread-safe status tracker for the thermo-fan daemon.
// It is written by the control loop and read for heartbeat, startup and
// shutdown reporting and by -print-state.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermo-fan/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs       int64
	HeartbeatMs    int64
	ReadyTimeoutMs int64
	ScaleFactor    float64
	Threshold      float64
	Comparison     string
	Alert          string
	SerialPort     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Last       logic.Decision
	HasReading bool
	Counts     logic.Counts
	Errors     int
	LastError  string
	StartTime  time.Time
	Now        time.Time
	Config     Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records the latest decision and counts.
// Called from the control loop on every successful cycle.
func (t *Tracker) Update(d logic.Decision, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Last = d
	t.snap.HasReading = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordError counts a failed cycle and keeps its message.
func (t *Tracker) RecordError(err error) {
	t.mu.Lock()
	t.snap.Errors++
	t.snap.LastError = err.Error()
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
