package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		cmp  Comparison
		want State
	}{
		{"below gt", 29.9, CompareGreater, StateOff},
		{"above gt", 30.1, CompareGreater, StateOn},
		{"equal gt", 30.0, CompareGreater, StateOff},
		{"below ge", 29.9, CompareGreaterOrEqual, StateOff},
		{"above ge", 30.1, CompareGreaterOrEqual, StateOn},
		{"equal ge", 30.0, CompareGreaterOrEqual, StateOn},
		{"zero", 0, CompareGreater, StateOff},
		{"unknown comparison is strict", 30.0, Comparison("??"), StateOff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.temp, 30.0, tt.cmp); got != tt.want {
				t.Errorf("Decide(%v, 30, %s) = %s, want %s", tt.temp, tt.cmp, got, tt.want)
			}
		})
	}
}

func TestDecideChatter(t *testing.T) {
	temps := []float64{29.9, 30.1, 29.9, 30.1}
	want := []State{StateOff, StateOn, StateOff, StateOn}

	for i, temp := range temps {
		if got := Decide(temp, 30.0, CompareGreater); got != want[i] {
			t.Errorf("step %d: Decide(%v) = %s, want %s", i, temp, got, want[i])
		}
	}
}

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		policy     AlertPolicy
		prev, next State
		want       bool
	}{
		{AlertEvery, StateOff, StateOn, true},
		{AlertEvery, StateOn, StateOn, true},
		{AlertEvery, StateOn, StateOff, false},
		{AlertRise, StateOff, StateOn, true},
		{AlertRise, StateOn, StateOn, false},
		{AlertRise, StateOn, StateOff, false},
		{AlertOff, StateOff, StateOn, false},
	}
	for _, tt := range tests {
		if got := ShouldAlert(tt.policy, tt.prev, tt.next); got != tt.want {
			t.Errorf("ShouldAlert(%s, %s, %s) = %v, want %v", tt.policy, tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestParseComparison(t *testing.T) {
	for _, s := range []string{"gt", "ge"} {
		c, err := ParseComparison(s)
		if err != nil {
			t.Errorf("ParseComparison(%q): unexpected error: %v", s, err)
		}
		if string(c) != s {
			t.Errorf("ParseComparison(%q) = %q", s, c)
		}
	}
	if _, err := ParseComparison(">"); err == nil {
		t.Error("expected error for unknown comparison")
	}
}

func TestParseAlertPolicy(t *testing.T) {
	for _, s := range []string{"every", "rise", "off"} {
		if _, err := ParseAlertPolicy(s); err != nil {
			t.Errorf("ParseAlertPolicy(%q): unexpected error: %v", s, err)
		}
	}
	if _, err := ParseAlertPolicy("always"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestDecideUnsetComparisonIsStrict(t *testing.T) {
	for _, cmp := range []Comparison{"", "bogus"} {
		if got := Decide(30.0, 30.0, cmp); got != StateOff {
			t.Errorf("Decide(30, 30, %q) = %s, want OFF", cmp, got)
		}
		if got := Decide(30.1, 30.0, cmp); got != StateOn {
			t.Errorf("Decide(30.1, 30, %q) = %s, want ON", cmp, got)
		}
	}
}

func TestNewController(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1, Threshold: 30}, t0)
	if c.Last().State != StateOff {
		t.Errorf("expected initial state OFF, got %s", c.Last().State)
	}
	if c.CountsSnapshot() != (Counts{}) {
		t.Errorf("expected zero counts, got %+v", c.CountsSnapshot())
	}
}

func TestControllerZeroSample(t *testing.T) {
	c := NewController(Settings{ScaleFactor: ScaleFactorB, Threshold: 30, Comparison: CompareGreater, Alert: AlertEvery}, t0)

	d := c.Process(Input{Raw: 0, Time: t0})
	if d.Temp != 0 {
		t.Errorf("expected 0.0, got %v", d.Temp)
	}
	if d.State != StateOff {
		t.Errorf("expected OFF, got %s", d.State)
	}
	if d.Alert {
		t.Error("expected no alert")
	}
	if d.Changed {
		t.Error("expected no change from initial OFF")
	}
}

func TestControllerHighSample(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 0.5, Threshold: 30, Comparison: CompareGreater, Alert: AlertEvery}, t0)

	d := c.Process(Input{Raw: 70, Time: t0})
	if d.Temp != 35.0 {
		t.Errorf("expected 35.0, got %v", d.Temp)
	}
	if d.State != StateOn {
		t.Errorf("expected ON, got %s", d.State)
	}
	if !d.Alert {
		t.Error("expected alert")
	}
	if !d.Changed || d.Previous != StateOff {
		t.Errorf("expected transition from OFF, got %+v", d)
	}
}

func TestControllerChatter(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1, Threshold: 30, Comparison: CompareGreater, Alert: AlertRise}, t0)

	raws := []uint8{29, 31, 29, 31}
	want := []State{StateOff, StateOn, StateOff, StateOn}
	for i, raw := range raws {
		d := c.Process(Input{Raw: raw, Time: t0.Add(time.Duration(i) * time.Second)})
		if d.State != want[i] {
			t.Errorf("step %d: expected %s, got %s", i, want[i], d.State)
		}
	}

	counts := c.CountsSnapshot()
	if counts.Cycles != 4 || counts.On != 2 || counts.Off != 2 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if counts.Transitions != 3 {
		t.Errorf("expected 3 transitions, got %d", counts.Transitions)
	}
	// Rise policy alerts on each off-to-on edge.
	if counts.Alerts != 2 {
		t.Errorf("expected 2 alerts, got %d", counts.Alerts)
	}
}

func TestControllerRiseAlertOnce(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1, Threshold: 30, Alert: AlertRise}, t0)

	var alerts []bool
	for i := 0; i < 3; i++ {
		alerts = append(alerts, c.Process(Input{Raw: 40, Time: t0}).Alert)
	}
	if !alerts[0] || alerts[1] || alerts[2] {
		t.Errorf("expected alert on first high cycle only, got %v", alerts)
	}
}

func TestControllerEveryAlert(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1, Threshold: 30, Alert: AlertEvery}, t0)

	for i := 0; i < 3; i++ {
		if !c.Process(Input{Raw: 40, Time: t0}).Alert {
			t.Errorf("cycle %d: expected alert", i)
		}
	}
}

func TestControllerBoundary(t *testing.T) {
	gt := NewController(Settings{ScaleFactor: 1, Threshold: 30, Comparison: CompareGreater}, t0)
	ge := NewController(Settings{ScaleFactor: 1, Threshold: 30, Comparison: CompareGreaterOrEqual}, t0)

	if s := gt.Process(Input{Raw: 30}).State; s != StateOff {
		t.Errorf("gt at threshold: expected OFF, got %s", s)
	}
	if s := ge.Process(Input{Raw: 30}).State; s != StateOn {
		t.Errorf("ge at threshold: expected ON, got %s", s)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1, Threshold: 30}, t0)
	c.Process(Input{Raw: 40, Time: t0.Add(time.Minute)})

	if hb := c.CheckHeartbeat(t0.Add(14*time.Minute), 15*time.Minute); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	hb := c.CheckHeartbeat(t0.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb.Uptime)
	}
	if hb.Counts.Cycles != 1 || hb.Counts.On != 1 {
		t.Errorf("unexpected counts: %+v", hb.Counts)
	}
	if hb.Last.State != StateOn {
		t.Errorf("expected last state ON, got %s", hb.Last.State)
	}

	// Next heartbeat is measured from the previous one.
	if hb := c.CheckHeartbeat(t0.Add(20*time.Minute), 15*time.Minute); hb != nil {
		t.Error("expected no heartbeat 5m after the last one")
	}
	if hb := c.CheckHeartbeat(t0.Add(30*time.Minute), 15*time.Minute); hb == nil {
		t.Error("expected heartbeat 15m after the last one")
	}
}

func TestCheckHeartbeatDisabled(t *testing.T) {
	c := NewController(Settings{ScaleFactor: 1}, t0)
	if hb := c.CheckHeartbeat(t0.Add(24*time.Hour), 0); hb != nil {
		t.Error("expected nil heartbeat when disabled")
	}
}
