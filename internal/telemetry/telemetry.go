// Package telemetry renders control-cycle readings as CRLF-terminated text
// lines and writes them to a byte sink.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/sweeney/thermo-fan/internal/logic"
)

// MaxLineLen bounds a temperature line, CRLF included.
const MaxLineLen = 16

// Fixed lines.
const (
	AlertLine   = "Alert: High temperature!\r\n"
	FanOnLine   = "Fan ON\r\n"
	FanOffLine  = "Fan OFF\r\n"
	BannerTitle = "Temperature Monitoring System\r\n"
	BannerRule  = "----------------------------\r\n"
)

// ErrLineTooLong is returned when a temperature does not fit in MaxLineLen.
var ErrLineTooLong = errors.New("telemetry: line too long")

// Sink accepts one byte at a time, blocking until the byte is accepted.
type Sink interface {
	WriteByte(c byte) error
}

// FormatTemp renders t with one decimal.
func FormatTemp(t float64) string {
	return fmt.Sprintf("Temp: %.1f C\r\n", t)
}

// Reporter writes telemetry lines synchronously. It does no buffering.
type Reporter struct {
	sink          Sink
	actuatorLines bool
}

// NewReporter creates a Reporter. actuatorLines adds a "Fan ON"/"Fan OFF"
// line after every temperature line.
func NewReporter(sink Sink, actuatorLines bool) *Reporter {
	return &Reporter{sink: sink, actuatorLines: actuatorLines}
}

// Banner writes the startup banner.
func (r *Reporter) Banner() error {
	if err := r.WriteLine(BannerTitle); err != nil {
		return err
	}
	return r.WriteLine(BannerRule)
}

// Report writes the temperature line for d, followed by the actuator line
// when enabled and the alert line when d.Alert is set.
func (r *Reporter) Report(d logic.Decision) error {
	line := FormatTemp(d.Temp)
	if len(line) > MaxLineLen {
		return fmt.Errorf("%w: %q is %d bytes", ErrLineTooLong, line, len(line))
	}
	if err := r.WriteLine(line); err != nil {
		return err
	}

	if r.actuatorLines {
		l := FanOffLine
		if d.State == logic.StateOn {
			l = FanOnLine
		}
		if err := r.WriteLine(l); err != nil {
			return err
		}
	}

	if d.Alert {
		return r.WriteLine(AlertLine)
	}
	return nil
}

// WriteLine hands s to the sink byte by byte.
func (r *Reporter) WriteLine(s string) error {
	for i := 0; i < len(s); i++ {
		if err := r.sink.WriteByte(s[i]); err != nil {
			return fmt.Errorf("write telemetry byte %d of %q: %w", i, s, err)
		}
	}
	return nil
}
