// Package uart provides character sinks for telemetry: a serial port and a
// plain io.Writer.
package uart

import (
	"fmt"
	"io"

	"go.bug.st/serial"
	"go.uber.org/multierr"
)

// DefaultBaudRate matches the firmware's 9600 8N1 frame.
const DefaultBaudRate = 9600

// Port is the subset of serial.Port used by Serial.
type Port interface {
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// Serial writes one byte at a time and waits for it to leave the
// transmitter before accepting the next.
type Serial struct {
	name string
	port Port
	buf  [1]byte
}

// Open opens name at baud, 8 data bits, no parity, 1 stop bit.
func Open(name string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return &Serial{name: name, port: port}, nil
}

// NewSerial wraps an already open port.
func NewSerial(name string, port Port) *Serial {
	return &Serial{name: name, port: port}
}

// WriteByte transmits c and blocks until the output buffer is drained.
func (s *Serial) WriteByte(c byte) error {
	s.buf[0] = c
	n, err := s.port.Write(s.buf[:])
	if err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	if n != 1 {
		return fmt.Errorf("write %s: short write", s.name)
	}
	if err := s.port.Drain(); err != nil {
		return fmt.Errorf("drain %s: %w", s.name, err)
	}
	return nil
}

// Close drains and closes the port.
func (s *Serial) Close() error {
	return multierr.Combine(s.port.Drain(), s.port.Close())
}

// Writer adapts an io.Writer, such as os.Stdout, to a byte sink.
type Writer struct {
	w   io.Writer
	buf [1]byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteByte writes c to the underlying writer.
func (w *Writer) WriteByte(c byte) error {
	w.buf[0] = c
	_, err := w.w.Write(w.buf[:])
	return err
}
