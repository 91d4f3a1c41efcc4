// Command thermo-fan samples a temperature sensor through a parallel ADC,
// switches a fan at a threshold and reports readings over a serial line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/thermo-fan/internal/actuator"
	"github.com/sweeney/thermo-fan/internal/adc"
	"github.com/sweeney/thermo-fan/internal/clock"
	"github.com/sweeney/thermo-fan/internal/config"
	"github.com/sweeney/thermo-fan/internal/gpio"
	"github.com/sweeney/thermo-fan/internal/logic"
	"github.com/sweeney/thermo-fan/internal/monitor"
	"github.com/sweeney/thermo-fan/internal/status"
	"github.com/sweeney/thermo-fan/internal/telemetry"
	"github.com/sweeney/thermo-fan/internal/uart"
)

// overrides holds command-line values that take precedence over the config file.
type overrides struct {
	port   string
	period time.Duration
	scale  float64
}

func main() {
	configPath := flag.String("config", "/etc/thermo-fan.yaml", "YAML configuration file")
	port := flag.String("port", "", `Telemetry serial port ("-" for stdout, empty uses config)`)
	period := flag.Duration("period", 0, "Control cycle period (0 uses config)")
	scale := flag.Float64("scale", 0, "Degrees C per ADC count (0 uses config)")
	printState := flag.Bool("print-state", false, "Take one reading, print status and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath, overrides{port: *port, period: *period, scale: *scale})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.port != "" {
		cfg.Serial.Port = o.port
	}
	if o.period > 0 {
		cfg.Loop.Period = o.period
	}
	if o.scale > 0 {
		cfg.Sensor.ScaleFactor = o.scale
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, printState bool) error {
	// Initialize GPIO
	hw, err := gpio.NewRealHardware(cfg.Pins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			log.Printf("gpio close: %v", err)
		}
	}()

	sleeper := clock.New(cfg.Loop.Delay)
	driver := adc.New(hw, sleeper, adc.Config{
		ReadyTimeout: cfg.ADC.ReadyTimeout,
		PollInterval: cfg.ADC.PollInterval,
		WritePulse:   cfg.ADC.WritePulse,
	})
	if err := driver.Init(); err != nil {
		return err
	}

	start := time.Now()
	ctrl := logic.NewController(cfg.Settings(), start)
	tracker := status.NewTracker(start, statusConfig(cfg))

	// Print state mode
	if printState {
		return printOnce(driver, ctrl, tracker)
	}

	act := actuator.New(hw, cfg.IndicatorEnabled())
	if err := act.Init(); err != nil {
		return err
	}

	sink, closeSink, err := openSink(cfg.Serial)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer closeSink()

	reporter := telemetry.NewReporter(sink, cfg.Control.ReportActuator)
	if err := reporter.Banner(); err != nil {
		log.Printf("banner: %v", err)
	}

	log.Printf("started: period=%v threshold=%.1f comparison=%s scale=%v alert=%s port=%s ready_timeout=%v",
		cfg.Loop.Period, cfg.Control.Threshold, cfg.Control.Comparison, cfg.ScaleFactor(),
		cfg.Control.Alert, cfg.Serial.Port, cfg.ADC.ReadyTimeout)
	log.Printf("status: %s", status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""))

	loop := &monitor.Loop{
		Sampler:    driver,
		Controller: ctrl,
		Actuator:   act,
		Reporter:   reporter,
		Sleeper:    sleeper,
		Period:     cfg.Loop.Period,
		Heartbeat:  cfg.Loop.Heartbeat,
		Tracker:    tracker,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	runLoop(loop, act, tracker, sigCh)
	return nil
}

// runLoop runs the control loop until a signal arrives, then drives the
// actuator off. It returns the signal name.
func runLoop(loop *monitor.Loop, act monitor.Actuator, tracker *status.Tracker, sig <-chan os.Signal) string {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason <- signalName(s)
			cancel()
		case <-ctx.Done():
			reason <- ""
		}
	}()

	loop.Run(ctx)
	cancel()
	name := <-reason

	if err := act.Apply(logic.StateOff); err != nil {
		log.Printf("failed to switch actuator off: %v", err)
	}
	if tracker != nil {
		log.Printf("status: %s", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", name))
	}
	return name
}

// printOnce takes one reading without touching the actuator and prints the status.
func printOnce(sampler monitor.Sampler, ctrl *logic.Controller, tracker *status.Tracker) error {
	raw, err := sampler.Read(context.Background())
	if err != nil {
		return fmt.Errorf("read adc: %w", err)
	}
	d := ctrl.Process(logic.Input{Raw: raw, Time: time.Now()})
	tracker.Update(d, ctrl.CountsSnapshot())
	fmt.Printf("%s\n", status.FormatJSON(tracker.Snapshot()))
	return nil
}

// openSink returns the telemetry sink for cfg and a function releasing it.
func openSink(cfg config.SerialConfig) (telemetry.Sink, func(), error) {
	if cfg.Port == config.StdoutPort {
		return uart.NewWriter(os.Stdout), func() {}, nil
	}
	s, err := uart.Open(cfg.Port, cfg.Baud)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Printf("serial close: %v", err)
		}
	}, nil
}

func statusConfig(cfg *config.Config) status.Config {
	return status.Config{
		PeriodMs:       cfg.Loop.Period.Milliseconds(),
		HeartbeatMs:    cfg.Loop.Heartbeat.Milliseconds(),
		ReadyTimeoutMs: cfg.ADC.ReadyTimeout.Milliseconds(),
		ScaleFactor:    cfg.ScaleFactor(),
		Threshold:      cfg.Control.Threshold,
		Comparison:     cfg.Control.Comparison,
		Alert:          cfg.Control.Alert,
		SerialPort:     cfg.Serial.Port,
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
