//go:build !linux

package gpio

import "errors"

// RealHardware is not available on non-Linux platforms.
type RealHardware struct{}

// NewRealHardware returns an error on non-Linux platforms.
func NewRealHardware(pins Pins) (*RealHardware, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealHardware) Set(line Line, high bool) error {
	return errors.New("gpio: not supported")
}

// Get is not implemented on non-Linux platforms.
func (r *RealHardware) Get(line Line) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// ReadBus is not implemented on non-Linux platforms.
func (r *RealHardware) ReadBus() (uint8, error) {
	return 0, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealHardware) Close() error {
	return nil
}
