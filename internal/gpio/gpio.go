// Package gpio provides access to the controller's I/O lines with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Line names the role of a single I/O line. Levels are raw electrical
// levels: active-low signalling is the caller's concern.
type Line int

const (
	LineFan  Line = iota // actuator control output
	LineLED              // status indicator output
	LineCS               // ADC chip select output
	LineRD               // ADC read strobe output
	LineWR               // ADC write strobe output
	LineINTR             // ADC ready/interrupt input
)

// BusWidth is the number of lines in the ADC parallel data bus.
const BusWidth = 8

func (l Line) String() string {
	switch l {
	case LineFan:
		return "FAN"
	case LineLED:
		return "LED"
	case LineCS:
		return "CS"
	case LineRD:
		return "RD"
	case LineWR:
		return "WR"
	case LineINTR:
		return "INTR"
	default:
		return fmt.Sprintf("LINE(%d)", int(l))
	}
}

// Hardware reads and drives the named lines and the data bus.
type Hardware interface {
	// Set drives an output line high (true) or low (false).
	Set(line Line, high bool) error

	// Get returns the current level of a line.
	Get(line Line) (bool, error)

	// ReadBus samples the 8-bit parallel data bus. Bit i is data line i.
	ReadBus() (uint8, error)

	// Close releases GPIO resources.
	Close() error
}

// Pins maps line roles to offsets on a GPIO chip.
type Pins struct {
	Chip string
	Fan  int
	LED  int
	CS   int
	RD   int
	WR   int
	INTR int
	Data [BusWidth]int
}

// Default pin assignment (BCM numbering on gpiochip0).
const (
	DefaultChip    = "gpiochip0"
	DefaultPinFan  = 17
	DefaultPinLED  = 27
	DefaultPinCS   = 22
	DefaultPinRD   = 23
	DefaultPinWR   = 24
	DefaultPinINTR = 25
)

// DefaultPinData is the default data bus assignment, D0 first.
var DefaultPinData = [BusWidth]int{5, 6, 12, 13, 16, 19, 20, 26}

// DefaultPins returns the default pin assignment.
func DefaultPins() Pins {
	return Pins{
		Chip: DefaultChip,
		Fan:  DefaultPinFan,
		LED:  DefaultPinLED,
		CS:   DefaultPinCS,
		RD:   DefaultPinRD,
		WR:   DefaultPinWR,
		INTR: DefaultPinINTR,
		Data: DefaultPinData,
	}
}

// Validate checks that no offset is negative or assigned twice.
func (p Pins) Validate() error {
	seen := make(map[int]string)
	check := func(name string, offset int) error {
		if offset < 0 {
			return fmt.Errorf("pin %s: negative offset %d", name, offset)
		}
		if other, ok := seen[offset]; ok {
			return fmt.Errorf("pin %s: offset %d already used by %s", name, offset, other)
		}
		seen[offset] = name
		return nil
	}

	named := []struct {
		name   string
		offset int
	}{
		{"fan", p.Fan},
		{"led", p.LED},
		{"cs", p.CS},
		{"rd", p.RD},
		{"wr", p.WR},
		{"intr", p.INTR},
	}
	for _, n := range named {
		if err := check(n.name, n.offset); err != nil {
			return err
		}
	}
	for i, offset := range p.Data {
		if err := check(fmt.Sprintf("d%d", i), offset); err != nil {
			return err
		}
	}
	return nil
}
