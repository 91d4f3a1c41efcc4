// Package actuator drives the fan and its status indicator.
package actuator

import (
	"fmt"

	"github.com/sweeney/thermo-fan/internal/gpio"
	"github.com/sweeney/thermo-fan/internal/logic"
)

// Actuator writes an actuator state to the fan line and, when enabled,
// mirrors it on the indicator line. Both lines are active-high.
type Actuator struct {
	hw        gpio.Hardware
	indicator bool
}

// New creates an Actuator. indicator selects whether the LED mirrors the fan.
func New(hw gpio.Hardware, indicator bool) *Actuator {
	return &Actuator{hw: hw, indicator: indicator}
}

// Init drives the fan and indicator off.
func (a *Actuator) Init() error {
	if err := a.hw.Set(gpio.LineFan, false); err != nil {
		return fmt.Errorf("actuator init: %w", err)
	}
	if err := a.hw.Set(gpio.LineLED, false); err != nil {
		return fmt.Errorf("actuator init: %w", err)
	}
	return nil
}

// Apply writes s to the output lines. It writes on every call, whether or
// not s changed.
func (a *Actuator) Apply(s logic.State) error {
	on := s == logic.StateOn
	if err := a.hw.Set(gpio.LineFan, on); err != nil {
		return fmt.Errorf("apply %s: %w", s, err)
	}
	if a.indicator {
		if err := a.hw.Set(gpio.LineLED, on); err != nil {
			return fmt.Errorf("apply %s indicator: %w", s, err)
		}
	}
	return nil
}
