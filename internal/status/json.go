package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Reading       *ReadingJSON `json:"reading,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Counts        CountsJSON   `json:"counts"`
	Errors        int          `json:"errors"`
	LastError     string       `json:"last_error,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ReadingJSON is the JSON representation of the latest decision.
type ReadingJSON struct {
	Raw      uint8   `json:"raw"`
	Temp     float64 `json:"temp_c"`
	Actuator string  `json:"actuator"`
	Alert    bool    `json:"alert"`
	Time     string  `json:"time,omitempty"`
}

// CountsJSON is the JSON representation of decision counts.
type CountsJSON struct {
	Cycles      int `json:"cycles"`
	On          int `json:"on"`
	Off         int `json:"off"`
	Transitions int `json:"transitions"`
	Alerts      int `json:"alerts"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs       int64   `json:"period_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	ReadyTimeoutMs int64   `json:"ready_timeout_ms"`
	ScaleFactor    float64 `json:"scale_factor"`
	Threshold      float64 `json:"threshold"`
	Comparison     string  `json:"comparison"`
	Alert          string  `json:"alert"`
	SerialPort     string  `json:"serial_port"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Cycles:      snap.Counts.Cycles,
			On:          snap.Counts.On,
			Off:         snap.Counts.Off,
			Transitions: snap.Counts.Transitions,
			Alerts:      snap.Counts.Alerts,
		},
		Errors:    snap.Errors,
		LastError: snap.LastError,
		Config: ConfigJSON{
			PeriodMs:       snap.Config.PeriodMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			ReadyTimeoutMs: snap.Config.ReadyTimeoutMs,
			ScaleFactor:    snap.Config.ScaleFactor,
			Threshold:      snap.Config.Threshold,
			Comparison:     snap.Config.Comparison,
			Alert:          snap.Config.Alert,
			SerialPort:     snap.Config.SerialPort,
		},
	}

	if snap.HasReading {
		r := &ReadingJSON{
			Raw:      snap.Last.Raw,
			Temp:     snap.Last.Temp,
			Actuator: string(snap.Last.State),
			Alert:    snap.Last.Alert,
		}
		if !snap.Last.Timestamp.IsZero() {
			r.Time = snap.Last.Timestamp.UTC().Format(time.RFC3339)
		}
		inner.Reading = r
	}
	return inner
}

// FormatJSON returns the indented JSON status for -print-state.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for a lifecycle log line.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
