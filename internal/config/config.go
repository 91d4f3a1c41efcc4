// Package config loads the controller configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/thermo-fan/internal/clock"
	"github.com/sweeney/thermo-fan/internal/gpio"
	"github.com/sweeney/thermo-fan/internal/logic"
	"github.com/sweeney/thermo-fan/internal/uart"
)

// ErrScaleFactorUnset is returned when neither sensor.scale_factor nor the
// vref/bits/mv_per_degree triple is configured.
var ErrScaleFactorUnset = errors.New("config: sensor scale factor not set")

// ErrScaleFactorNotPositive is returned when a scale factor is configured
// but is zero or negative.
var ErrScaleFactorNotPositive = errors.New("config: sensor scale factor must be positive")

var (
	ErrInvalidComparison  = errors.New("config: invalid control.comparison")
	ErrInvalidAlertPolicy = errors.New("config: invalid control.alert")
)

// Config represents the application configuration.
type Config struct {
	GPIO    GPIOConfig    `yaml:"gpio"`
	ADC     ADCConfig     `yaml:"adc"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Control ControlConfig `yaml:"control"`
	Loop    LoopConfig    `yaml:"loop"`
	Serial  SerialConfig  `yaml:"serial"`
}

// GPIOConfig contains line offsets on the GPIO chip.
type GPIOConfig struct {
	Chip string `yaml:"chip"`
	Fan  int    `yaml:"fan"`
	LED  int    `yaml:"led"`
	CS   int    `yaml:"adc_cs"`
	RD   int    `yaml:"adc_rd"`
	WR   int    `yaml:"adc_wr"`
	INTR int    `yaml:"adc_intr"`
	Data []int  `yaml:"adc_data"` // D0 first
}

// ADCConfig contains handshake timing.
type ADCConfig struct {
	ReadyTimeout time.Duration `yaml:"ready_timeout"` // 0 waits forever
	PollInterval time.Duration `yaml:"poll_interval"` // 0 spins
	WritePulse   time.Duration `yaml:"write_pulse"`
}

// SensorConfig defines the count-to-degrees conversion.
type SensorConfig struct {
	ScaleFactor float64 `yaml:"scale_factor"`  // degrees C per count; wins if set
	VRef        float64 `yaml:"vref"`          // volts
	Bits        uint    `yaml:"bits"`          // ADC resolution
	MVPerDegree float64 `yaml:"mv_per_degree"` // sensor sensitivity
}

// ControlConfig contains threshold actuation settings.
type ControlConfig struct {
	Threshold      float64 `yaml:"threshold"`
	Comparison     string  `yaml:"comparison"` // gt or ge
	Alert          string  `yaml:"alert"`      // every, rise or off
	Indicator      *bool   `yaml:"indicator"`  // LED mirrors fan
	ReportActuator bool    `yaml:"report_actuator"`
}

// LoopConfig contains main loop timing.
type LoopConfig struct {
	Period    time.Duration `yaml:"period"`
	Delay     string        `yaml:"delay"`     // sleep or spin
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables
}

// SerialConfig contains the telemetry port. Port "-" writes to stdout.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// StdoutPort selects standard output as the telemetry sink.
const StdoutPort = "-"

// Default returns a default configuration. The sensor scale factor is
// deliberately left unset.
func Default() *Config {
	indicator := true
	pins := gpio.DefaultPins()
	return &Config{
		GPIO: GPIOConfig{
			Chip: pins.Chip,
			Fan:  pins.Fan,
			LED:  pins.LED,
			CS:   pins.CS,
			RD:   pins.RD,
			WR:   pins.WR,
			INTR: pins.INTR,
			Data: append([]int(nil), pins.Data[:]...),
		},
		ADC: ADCConfig{
			WritePulse: time.Millisecond,
		},
		Control: ControlConfig{
			Threshold:  30.0,
			Comparison: string(logic.CompareGreater),
			Alert:      string(logic.AlertEvery),
			Indicator:  &indicator,
		},
		Loop: LoopConfig{
			Period:    time.Second,
			Delay:     clock.ModeSleep,
			Heartbeat: 15 * time.Minute,
		},
		Serial: SerialConfig{
			Port: "/dev/ttyS0",
			Baud: uart.DefaultBaudRate,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. Callers apply any overrides
// and then call Validate.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if len(c.GPIO.Data) == 0 {
		c.GPIO.Data = def.GPIO.Data
	}
	if c.Control.Comparison == "" {
		c.Control.Comparison = def.Control.Comparison
	}
	if c.Control.Alert == "" {
		c.Control.Alert = def.Control.Alert
	}
	if c.Control.Indicator == nil {
		c.Control.Indicator = def.Control.Indicator
	}
	if c.Loop.Period == 0 {
		c.Loop.Period = def.Loop.Period
	}
	if c.Loop.Delay == "" {
		c.Loop.Delay = def.Loop.Delay
	}
	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
}

// Validate checks the configuration for values the controller cannot run with.
func (c *Config) Validate() error {
	if c.ScaleFactor() == 0 {
		return ErrScaleFactorUnset
	}
	if sf := c.ScaleFactor(); sf <= 0 {
		return fmt.Errorf("%w: got %v", ErrScaleFactorNotPositive, sf)
	}
	if _, err := logic.ParseComparison(c.Control.Comparison); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidComparison, err)
	}
	if _, err := logic.ParseAlertPolicy(c.Control.Alert); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlertPolicy, err)
	}
	if c.Loop.Delay != clock.ModeSleep && c.Loop.Delay != clock.ModeSpin {
		return fmt.Errorf("config: loop.delay: unknown mode %q (want sleep or spin)", c.Loop.Delay)
	}
	if c.Loop.Period < 0 || c.ADC.ReadyTimeout < 0 || c.ADC.PollInterval < 0 || c.ADC.WritePulse < 0 {
		return errors.New("config: durations must not be negative")
	}
	if len(c.GPIO.Data) != gpio.BusWidth {
		return fmt.Errorf("config: gpio.adc_data: want %d lines, got %d", gpio.BusWidth, len(c.GPIO.Data))
	}
	if err := c.Pins().Validate(); err != nil {
		return fmt.Errorf("config: gpio: %w", err)
	}
	return nil
}

// ScaleFactor returns the configured degrees C per count, deriving it from
// vref/bits/mv_per_degree when scale_factor is not set.
func (c *Config) ScaleFactor() float64 {
	if c.Sensor.ScaleFactor != 0 {
		return c.Sensor.ScaleFactor
	}
	return logic.ScaleFactor(c.Sensor.VRef, c.Sensor.Bits, c.Sensor.MVPerDegree)
}

// Pins returns the GPIO assignment.
func (c *Config) Pins() gpio.Pins {
	p := gpio.Pins{
		Chip: c.GPIO.Chip,
		Fan:  c.GPIO.Fan,
		LED:  c.GPIO.LED,
		CS:   c.GPIO.CS,
		RD:   c.GPIO.RD,
		WR:   c.GPIO.WR,
		INTR: c.GPIO.INTR,
	}
	copy(p.Data[:], c.GPIO.Data)
	return p
}

// Settings returns the control settings. Call only on a validated config.
func (c *Config) Settings() logic.Settings {
	return logic.Settings{
		ScaleFactor: c.ScaleFactor(),
		Threshold:   c.Control.Threshold,
		Comparison:  logic.Comparison(c.Control.Comparison),
		Alert:       logic.AlertPolicy(c.Control.Alert),
	}
}

// IndicatorEnabled reports whether the LED mirrors the fan.
func (c *Config) IndicatorEnabled() bool {
	return c.Control.Indicator == nil || *c.Control.Indicator
}
