//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

// RealHardware drives lines on actual hardware using Linux GPIO character device.
type RealHardware struct {
	chip  *gpiocdev.Chip
	lines map[Line]*gpiocdev.Line
	data  *gpiocdev.Lines
	buf   []int
}

// NewRealHardware requests every line in pins. Outputs start in their idle
// state: fan and indicator off, ADC CS/RD/WR deasserted (high).
func NewRealHardware(pins Pins) (*RealHardware, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(pins.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealHardware{
		chip:  chip,
		lines: make(map[Line]*gpiocdev.Line),
		buf:   make([]int, BusWidth),
	}

	outputs := []struct {
		line    Line
		offset  int
		initial int
	}{
		{LineFan, pins.Fan, 0},
		{LineLED, pins.LED, 0},
		{LineCS, pins.CS, 1},
		{LineRD, pins.RD, 1},
		{LineWR, pins.WR, 1},
	}
	for _, o := range outputs {
		l, err := chip.RequestLine(o.offset, gpiocdev.AsOutput(o.initial))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", o.line, o.offset, err)
		}
		r.lines[o.line] = l
	}

	// INTR is open-collector on the ADC0804.
	intr, err := chip.RequestLine(pins.INTR, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request %s pin %d: %w", LineINTR, pins.INTR, err)
	}
	r.lines[LineINTR] = intr

	data, err := chip.RequestLines(pins.Data[:], gpiocdev.AsInput)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request data bus pins %v: %w", pins.Data, err)
	}
	r.data = data

	return r, nil
}

// Set drives an output line.
func (r *RealHardware) Set(line Line, high bool) error {
	l, ok := r.lines[line]
	if !ok {
		return fmt.Errorf("set %s: line not requested", line)
	}
	v := 0
	if high {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("set %s pin: %w", line, err)
	}
	return nil
}

// Get reads the level of a line.
func (r *RealHardware) Get(line Line) (bool, error) {
	l, ok := r.lines[line]
	if !ok {
		return false, fmt.Errorf("get %s: line not requested", line)
	}
	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("read %s pin: %w", line, err)
	}
	return v != 0, nil
}

// ReadBus samples all data lines in a single request.
func (r *RealHardware) ReadBus() (uint8, error) {
	if err := r.data.Values(r.buf); err != nil {
		return 0, fmt.Errorf("read data bus: %w", err)
	}
	var v uint8
	for i, bit := range r.buf {
		if bit != 0 {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Close releases GPIO resources.
// Reconfigures every line to input before closing so the fan and ADC are
// left undriven while the process is down.
func (r *RealHardware) Close() error {
	var err error

	for line, l := range r.lines {
		if line != LineINTR {
			if rerr := l.Reconfigure(gpiocdev.AsInput); rerr != nil {
				err = multierr.Append(err, fmt.Errorf("reconfigure %s pin: %w", line, rerr))
			}
		}
		if cerr := l.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s pin: %w", line, cerr))
		}
	}
	r.lines = nil

	if r.data != nil {
		if cerr := r.data.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close data bus: %w", cerr))
		}
		r.data = nil
	}
	if r.chip != nil {
		if cerr := r.chip.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close chip: %w", cerr))
		}
		r.chip = nil
	}

	return err
}
