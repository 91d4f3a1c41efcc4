package logic

import "time"

// Decide returns StateOn when temp passes threshold under cmp.
// The zero Comparison, and any name ParseComparison would reject, compare
// as CompareGreater. config.Validate rejects unknown names before they get here.
func Decide(temp, threshold float64, cmp Comparison) State {
	var on bool
	switch cmp {
	case CompareGreaterOrEqual:
		on = temp >= threshold
	case CompareGreater:
		on = temp > threshold
	default:
		on = temp > threshold
	}
	if on {
		return StateOn
	}
	return StateOff
}

// ShouldAlert reports whether the alert line accompanies a move from prev to next.
func ShouldAlert(policy AlertPolicy, prev, next State) bool {
	if next != StateOn {
		return false
	}
	switch policy {
	case AlertEvery:
		return true
	case AlertRise:
		return prev != StateOn
	default:
		return false
	}
}

// Controller turns raw samples into actuator decisions. The decision itself
// depends only on the current sample; the previous state is kept for
// alert edges and bookkeeping.
type Controller struct {
	settings      Settings
	last          Decision
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewController creates a controller. The actuator is assumed off at
// startTime.
func NewController(settings Settings, startTime time.Time) *Controller {
	return &Controller{
		settings:      settings,
		last:          Decision{State: StateOff},
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Settings returns the controller settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Process converts the sample and decides the actuator state.
func (c *Controller) Process(input Input) Decision {
	temp := Convert(input.Raw, c.settings.ScaleFactor)
	state := Decide(temp, c.settings.Threshold, c.settings.Comparison)
	prev := c.last.State

	d := Decision{
		Timestamp: input.Time,
		Raw:       input.Raw,
		Temp:      temp,
		State:     state,
		Previous:  prev,
		Changed:   state != prev,
		Alert:     ShouldAlert(c.settings.Alert, prev, state),
	}

	c.counts.Cycles++
	if state == StateOn {
		c.counts.On++
	} else {
		c.counts.Off++
	}
	if d.Changed {
		c.counts.Transitions++
	}
	if d.Alert {
		c.counts.Alerts++
	}

	c.last = d
	return d
}

// Last returns the most recent decision. Before the first cycle its State
// is StateOff.
func (c *Controller) Last() Decision {
	return c.last
}

// CountsSnapshot returns a copy of the decision counts.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
		Last:      c.last,
	}
}
