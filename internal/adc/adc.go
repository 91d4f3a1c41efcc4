// Package adc drives an ADC0804-style parallel converter through its
// chip-select / write / ready / read handshake.
//
// All four control lines are active-low. The ready line (INTR) is polled,
// never used as an interrupt.
package adc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/thermo-fan/internal/clock"
	"github.com/sweeney/thermo-fan/internal/gpio"
)

// ErrReadyTimeout is returned when INTR stays high past Config.ReadyTimeout.
var ErrReadyTimeout = errors.New("adc: ready timeout")

// State is a step of the read handshake.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateConverting
	StateWaitReady
	StateReading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSelected:
		return "Selected"
	case StateConverting:
		return "Converting"
	case StateWaitReady:
		return "WaitReady"
	case StateReading:
		return "Reading"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config tunes the handshake timing.
type Config struct {
	// ReadyTimeout bounds the wait for INTR. Zero waits forever.
	ReadyTimeout time.Duration

	// PollInterval is slept between INTR polls. Zero spins.
	PollInterval time.Duration

	// WritePulse holds WR low before releasing it.
	WritePulse time.Duration
}

// Driver performs one conversion per Read. Not safe for concurrent use.
type Driver struct {
	hw    gpio.Hardware
	sleep clock.Sleeper
	cfg   Config
	state State

	// OnState, if set, is called on every state entry.
	OnState func(State)
}

// New creates a Driver. The driver does not own hw.
func New(hw gpio.Hardware, sleep clock.Sleeper, cfg Config) *Driver {
	return &Driver{
		hw:    hw,
		sleep: sleep,
		cfg:   cfg,
	}
}

// Init deasserts CS, RD and WR.
func (d *Driver) Init() error {
	for _, line := range []gpio.Line{gpio.LineCS, gpio.LineRD, gpio.LineWR} {
		if err := d.hw.Set(line, true); err != nil {
			return fmt.Errorf("adc init: %w", err)
		}
	}
	d.enter(StateIdle)
	return nil
}

// State returns the current handshake state.
func (d *Driver) State() State {
	return d.state
}

// Read performs one full handshake and returns the byte on the data bus.
// The sample is not validated or filtered.
func (d *Driver) Read(ctx context.Context) (uint8, error) {
	d.enter(StateSelected)
	if err := d.hw.Set(gpio.LineCS, false); err != nil {
		return 0, d.abort(fmt.Errorf("assert CS: %w", err))
	}

	d.enter(StateConverting)
	if err := d.hw.Set(gpio.LineWR, false); err != nil {
		return 0, d.abort(fmt.Errorf("assert WR: %w", err))
	}
	if d.cfg.WritePulse > 0 {
		if err := d.sleep.Sleep(ctx, d.cfg.WritePulse); err != nil {
			return 0, d.abort(err)
		}
	}
	if err := d.hw.Set(gpio.LineWR, true); err != nil {
		return 0, d.abort(fmt.Errorf("release WR: %w", err))
	}

	d.enter(StateWaitReady)
	if err := d.waitReady(ctx); err != nil {
		return 0, d.abort(err)
	}

	d.enter(StateReading)
	if err := d.hw.Set(gpio.LineRD, false); err != nil {
		return 0, d.abort(fmt.Errorf("assert RD: %w", err))
	}
	value, err := d.hw.ReadBus()
	if err != nil {
		return 0, d.abort(err)
	}
	if err := d.hw.Set(gpio.LineRD, true); err != nil {
		return 0, d.abort(fmt.Errorf("release RD: %w", err))
	}

	if err := d.hw.Set(gpio.LineCS, true); err != nil {
		return 0, d.abort(fmt.Errorf("release CS: %w", err))
	}
	d.enter(StateIdle)

	return value, nil
}

// waitReady polls INTR until it drops low.
func (d *Driver) waitReady(ctx context.Context) error {
	waitCtx := ctx
	if d.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d.cfg.ReadyTimeout)
		defer cancel()
	}

	for {
		busy, err := d.hw.Get(gpio.LineINTR)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}

		if waitCtx.Err() != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w after %v", ErrReadyTimeout, d.cfg.ReadyTimeout)
		}

		if d.cfg.PollInterval > 0 {
			// Cancellation is handled on the next pass.
			_ = d.sleep.Sleep(waitCtx, d.cfg.PollInterval)
		}
	}
}

// abort releases WR, RD and CS so the converter is left deselected, then
// returns err.
func (d *Driver) abort(err error) error {
	_ = d.hw.Set(gpio.LineWR, true)
	_ = d.hw.Set(gpio.LineRD, true)
	_ = d.hw.Set(gpio.LineCS, true)
	d.enter(StateIdle)
	return fmt.Errorf("adc read: %w", err)
}

func (d *Driver) enter(s State) {
	d.state = s
	if d.OnState != nil {
		d.OnState(s)
	}
}
