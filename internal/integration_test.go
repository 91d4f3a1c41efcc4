package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/thermo-fan/internal/actuator"
	"github.com/sweeney/thermo-fan/internal/adc"
	"github.com/sweeney/thermo-fan/internal/clock"
	"github.com/sweeney/thermo-fan/internal/gpio"
	"github.com/sweeney/thermo-fan/internal/logic"
	"github.com/sweeney/thermo-fan/internal/monitor"
	"github.com/sweeney/thermo-fan/internal/status"
	"github.com/sweeney/thermo-fan/internal/telemetry"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type system struct {
	hw      *gpio.FakeHardware
	sink    *telemetry.FakeSink
	sleeper *clock.FakeSleeper
	driver  *adc.Driver
	tracker *status.Tracker
	loop    *monitor.Loop
}

// newSystem wires the full pipeline against fake hardware, a fake sink and
// a non-blocking sleeper.
func newSystem(settings logic.Settings, adcCfg adc.Config, bus ...uint8) *system {
	s := &system{
		hw:      gpio.NewFakeHardware(bus...),
		sink:    telemetry.NewFakeSink(),
		sleeper: &clock.FakeSleeper{},
		tracker: status.NewTracker(startTime, status.Config{}),
	}
	s.driver = adc.New(s.hw, s.sleeper, adcCfg)
	act := actuator.New(s.hw, true)
	s.loop = &monitor.Loop{
		Sampler:    s.driver,
		Controller: logic.NewController(settings, startTime),
		Actuator:   act,
		Reporter:   telemetry.NewReporter(s.sink, false),
		Sleeper:    s.sleeper,
		Period:     time.Second,
		Tracker:    s.tracker,
		Now:        func() time.Time { return startTime },
	}
	return s
}

func (s *system) run(t *testing.T, cycles int) {
	t.Helper()
	if err := s.driver.Init(); err != nil {
		t.Fatalf("adc init: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.sleeper.OnSleep = func(n int, d time.Duration) {
		if d == s.loop.Period && countPeriods(s.sleeper.Calls, d) == cycles {
			cancel()
		}
	}
	s.loop.Run(ctx)
}

func countPeriods(calls []time.Duration, period time.Duration) int {
	n := 0
	for _, c := range calls {
		if c == period {
			n++
		}
	}
	return n
}

func TestIntegrationZeroReading(t *testing.T) {
	s := newSystem(logic.Settings{
		ScaleFactor: logic.ScaleFactorB,
		Threshold:   30,
		Comparison:  logic.CompareGreater,
		Alert:       logic.AlertEvery,
	}, adc.Config{}, 0)

	s.run(t, 1)

	if got := s.sink.String(); got != "Temp: 0.0 C\r\n" {
		t.Errorf("telemetry: got %q", got)
	}
	if s.hw.Levels[gpio.LineFan] || s.hw.Levels[gpio.LineLED] {
		t.Error("expected fan and LED off")
	}
	if s.driver.State() != adc.StateIdle {
		t.Errorf("expected ADC idle, got %s", s.driver.State())
	}
}

func TestIntegrationHighReading(t *testing.T) {
	// 70 counts at 0.5 C/count is 35.0 C.
	s := newSystem(logic.Settings{
		ScaleFactor: 0.5,
		Threshold:   30,
		Comparison:  logic.CompareGreater,
		Alert:       logic.AlertEvery,
	}, adc.Config{}, 70)
	s.hw.BusyPolls = 25

	s.run(t, 1)

	if got := s.sink.String(); got != "Temp: 35.0 C\r\nAlert: High temperature!\r\n" {
		t.Errorf("telemetry: got %q", got)
	}
	if !s.hw.Levels[gpio.LineFan] || !s.hw.Levels[gpio.LineLED] {
		t.Error("expected fan and LED on")
	}
}

func TestIntegrationHandshakeThenActuate(t *testing.T) {
	s := newSystem(logic.Settings{ScaleFactor: 1, Threshold: 30, Alert: logic.AlertOff}, adc.Config{}, 40)

	s.run(t, 1)

	// Init, handshake, then fan and LED.
	want := []gpio.Write{
		{Line: gpio.LineCS, High: true},
		{Line: gpio.LineRD, High: true},
		{Line: gpio.LineWR, High: true},
		{Line: gpio.LineCS, High: false},
		{Line: gpio.LineWR, High: false},
		{Line: gpio.LineWR, High: true},
		{Line: gpio.LineRD, High: false},
		{Line: gpio.LineRD, High: true},
		{Line: gpio.LineCS, High: true},
		{Line: gpio.LineFan, High: true},
		{Line: gpio.LineLED, High: true},
	}
	if len(s.hw.Writes) != len(want) {
		t.Fatalf("writes: got %v, want %v", s.hw.Writes, want)
	}
	for i := range want {
		if s.hw.Writes[i] != want[i] {
			t.Errorf("write %d: got %v, want %v", i, s.hw.Writes[i], want[i])
		}
	}
}

func TestIntegrationChatter(t *testing.T) {
	// 59 and 60 counts straddle a 29.75 C threshold at 0.5 C/count.
	s := newSystem(logic.Settings{
		ScaleFactor: 0.5,
		Threshold:   29.75,
		Comparison:  logic.CompareGreater,
		Alert:       logic.AlertRise,
	}, adc.Config{}, 59, 60, 59, 60)

	s.run(t, 4)

	want := "Temp: 29.5 C\r\n" +
		"Temp: 30.0 C\r\nAlert: High temperature!\r\n" +
		"Temp: 29.5 C\r\n" +
		"Temp: 30.0 C\r\nAlert: High temperature!\r\n"
	if got := s.sink.String(); got != want {
		t.Errorf("telemetry:\ngot  %q\nwant %q", got, want)
	}

	counts := s.tracker.Snapshot().Counts
	if counts.Transitions != 3 || counts.On != 2 || counts.Off != 2 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestIntegrationReadyTimeoutHoldsActuator(t *testing.T) {
	s := newSystem(logic.Settings{ScaleFactor: 1, Threshold: 30, Alert: logic.AlertEvery},
		adc.Config{ReadyTimeout: 2 * time.Millisecond}, 40)
	s.hw.BusyPolls = -1

	s.run(t, 2)

	if len(s.sink.Bytes) != 0 {
		t.Errorf("expected no telemetry on timeouts, got %q", s.sink.String())
	}
	if s.hw.Levels[gpio.LineFan] {
		t.Error("fan should not be driven without a sample")
	}
	if !s.hw.Levels[gpio.LineCS] {
		t.Error("expected ADC deselected after timeout")
	}

	snap := s.tracker.Snapshot()
	if snap.Errors != 2 {
		t.Errorf("expected 2 errors, got %d", snap.Errors)
	}
	if snap.HasReading {
		t.Error("expected no reading")
	}
}

func TestIntegrationReadyTimeoutIsDetectable(t *testing.T) {
	s := newSystem(logic.Settings{ScaleFactor: 1, Threshold: 30}, adc.Config{ReadyTimeout: time.Millisecond}, 40)
	s.hw.BusyPolls = -1

	_, err := s.loop.Cycle(context.Background())
	if !errors.Is(err, adc.ErrReadyTimeout) {
		t.Errorf("expected ErrReadyTimeout, got %v", err)
	}
}
