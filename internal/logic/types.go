// Package logic contains the pure conversion and threshold decision logic.
// This package has NO external dependencies (no GPIO, serial, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// State represents the actuator output state.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Comparison selects how a temperature is compared against the threshold.
// The zero value behaves as CompareGreater.
type Comparison string

const (
	CompareGreater        Comparison = "gt" // on when temp > threshold
	CompareGreaterOrEqual Comparison = "ge" // on when temp >= threshold
)

// ParseComparison validates s as a Comparison.
func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(s); c {
	case CompareGreater, CompareGreaterOrEqual:
		return c, nil
	}
	return "", fmt.Errorf("unknown comparison %q (want gt or ge)", s)
}

// AlertPolicy selects when the high-temperature alert line is emitted.
type AlertPolicy string

const (
	AlertEvery AlertPolicy = "every" // every cycle the actuator is on
	AlertRise  AlertPolicy = "rise"  // only on an off-to-on transition
	AlertOff   AlertPolicy = "off"
)

// ParseAlertPolicy validates s as an AlertPolicy.
func ParseAlertPolicy(s string) (AlertPolicy, error) {
	switch p := AlertPolicy(s); p {
	case AlertEvery, AlertRise, AlertOff:
		return p, nil
	}
	return "", fmt.Errorf("unknown alert policy %q (want every, rise or off)", s)
}

// Settings are fixed for the lifetime of a Controller.
type Settings struct {
	ScaleFactor float64 // degrees C per ADC count
	Threshold   float64 // degrees C
	Comparison  Comparison
	Alert       AlertPolicy
}

// Input represents a single raw sample.
type Input struct {
	Raw  uint8
	Time time.Time
}

// Decision is the outcome of one control cycle.
type Decision struct {
	Timestamp time.Time
	Raw       uint8
	Temp      float64
	State     State
	Previous  State // state applied in the previous cycle
	Changed   bool  // State != Previous
	Alert     bool  // emit the high-temperature alert line
}

// Counts tracks decisions since startup.
type Counts struct {
	Cycles      int
	On          int
	Off         int
	Transitions int
	Alerts      int
}

// HeartbeatData contains information for a heartbeat log line.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
	Last      Decision
}
