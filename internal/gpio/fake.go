package gpio

import (
	"errors"
	"fmt"
)

// Write records a single Set call on a FakeHardware.
type Write struct {
	Line Line
	High bool
}

func (w Write) String() string {
	if w.High {
		return w.Line.String() + "=1"
	}
	return w.Line.String() + "=0"
}

// FakeHardware is a test double that records line writes and returns
// scripted inputs.
type FakeHardware struct {
	// Levels holds the current level of every line that has been set.
	Levels map[Line]bool

	// Writes contains every Set call in order.
	Writes []Write

	// Bus contains scripted data bus values. Each ReadBus consumes the
	// next value; once exhausted the last value repeats.
	Bus []uint8

	// BusyPolls is the number of INTR reads that return high (busy) after
	// each WR rising edge before INTR drops low (conversion complete).
	// A negative value holds INTR busy forever.
	BusyPolls int

	// INTRPolls counts Get(LineINTR) calls since the last conversion start.
	INTRPolls int

	// SetError, if set, will be returned by Set.
	SetError error

	// BusError, if set, will be returned by ReadBus.
	BusError error

	// Closed tracks if Close was called.
	Closed bool

	busIndex int
}

// NewFakeHardware creates a FakeHardware with all outputs in their idle
// state and the given bus values scripted.
func NewFakeHardware(bus ...uint8) *FakeHardware {
	return &FakeHardware{
		Levels: map[Line]bool{
			LineFan:  false,
			LineLED:  false,
			LineCS:   true,
			LineRD:   true,
			LineWR:   true,
			LineINTR: true,
		},
		Bus: bus,
	}
}

// Set records the write. A WR rising edge starts a simulated conversion.
func (f *FakeHardware) Set(line Line, high bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	if line == LineINTR {
		return fmt.Errorf("set %s: line is an input", line)
	}

	if line == LineWR && high && !f.Levels[LineWR] {
		f.INTRPolls = 0
		f.Levels[LineINTR] = true
	}

	f.Levels[line] = high
	f.Writes = append(f.Writes, Write{Line: line, High: high})
	return nil
}

// Get returns the level of line. INTR reads count towards BusyPolls.
func (f *FakeHardware) Get(line Line) (bool, error) {
	if line == LineINTR {
		f.INTRPolls++
		if f.BusyPolls >= 0 && f.INTRPolls > f.BusyPolls {
			f.Levels[LineINTR] = false
		}
	}
	return f.Levels[line], nil
}

// ReadBus returns the next scripted bus value.
func (f *FakeHardware) ReadBus() (uint8, error) {
	if f.BusError != nil {
		return 0, f.BusError
	}

	if len(f.Bus) == 0 {
		return 0, errors.New("no bus values configured")
	}

	v := f.Bus[f.busIndex]
	if f.busIndex < len(f.Bus)-1 {
		f.busIndex++
	}
	return v, nil
}

// Close marks the hardware as closed.
func (f *FakeHardware) Close() error {
	f.Closed = true
	return nil
}

// ResetWrites clears the recorded writes.
func (f *FakeHardware) ResetWrites() {
	f.Writes = nil
}
