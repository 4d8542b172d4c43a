package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/grow-controller/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Lights        string       `json:"lights"`
	Fan           string       `json:"fan"`
	Mister        string       `json:"mister"`
	Ready         bool         `json:"ready"`
	Reading       *ReadingJSON `json:"reading,omitempty"`
	Next          NextJSON     `json:"next"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ReadingJSON is the last averaged reading.
type ReadingJSON struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// NextJSON lists the pending fire times as HH:MM:SS.
type NextJSON struct {
	Light         string `json:"light,omitempty"`
	FanStart      string `json:"fan_start,omitempty"`
	FanReason     string `json:"fan_start_reason,omitempty"`
	FanStop       string `json:"fan_stop,omitempty"`
	MisterStop    string `json:"mister_stop,omitempty"`
	Log           string `json:"log,omitempty"`
	HumidityCheck string `json:"humidity_check,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	LightsOn      int `json:"lights_on"`
	LightsOff     int `json:"lights_off"`
	FanOn         int `json:"fan_on"`
	FanOff        int `json:"fan_off"`
	MisterOn      int `json:"mister_on"`
	MisterOff     int `json:"mister_off"`
	Readings      int `json:"readings"`
	SampleFailed  int `json:"sample_failed"`
	HumidityCheck int `json:"humidity_checks"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs            int64   `json:"poll_ms"`
	Strategy          string  `json:"strategy"`
	HeartbeatMs       int64   `json:"heartbeat_ms"`
	Broker            string  `json:"broker"`
	HTTPAddr          string  `json:"http_addr"`
	SensorDriver      string  `json:"sensor_driver"`
	LightOn           string  `json:"light_on"`
	LightOff          string  `json:"light_off"`
	HumidityThreshold float64 `json:"humidity_threshold"`
}

// StateOrUnknown renders an actuator state, UNKNOWN before startup.
func StateOrUnknown(s logic.State) string {
	if s == "" {
		return "UNKNOWN"
	}
	return string(s)
}

func clock(t *logic.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Controller
	inner := StatusInner{
		Lights: StateOrUnknown(c.Lights),
		Fan:    StateOrUnknown(c.Fan),
		Mister: StateOrUnknown(c.Mister),
		Ready:  snap.Ready,
		Next: NextJSON{
			Light:         clock(c.NextLight),
			FanStart:      clock(c.NextFanStart),
			FanReason:     string(c.NextFanReason),
			FanStop:       clock(c.NextFanStop),
			MisterStop:    clock(c.NextMisterStop),
			Log:           clock(c.NextLog),
			HumidityCheck: clock(c.NextCheck),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker, Buffered: snap.MQTTBuffered},
		Counts: CountsJSON{
			LightsOn:      c.Counts.LightsOn,
			LightsOff:     c.Counts.LightsOff,
			FanOn:         c.Counts.FanOn,
			FanOff:        c.Counts.FanOff,
			MisterOn:      c.Counts.MisterOn,
			MisterOff:     c.Counts.MisterOff,
			Readings:      c.Counts.Readings,
			SampleFailed:  c.Counts.SampleFailed,
			HumidityCheck: c.Counts.HumidityCheck,
		},
		Config: ConfigJSON{
			PollMs:            snap.Config.PollMs,
			Strategy:          snap.Config.Strategy,
			HeartbeatMs:       snap.Config.HeartbeatMs,
			Broker:            snap.Config.Broker,
			HTTPAddr:          snap.Config.HTTPAddr,
			SensorDriver:      snap.Config.SensorDriver,
			LightOn:           snap.Config.LightOn,
			LightOff:          snap.Config.LightOff,
			HumidityThreshold: snap.Config.HumidityThreshold,
		},
	}
	if r := c.LastReading; r != nil {
		inner.Reading = &ReadingJSON{Temperature: r.Temperature, Humidity: r.Humidity}
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// Build returns the status document for the web endpoint.
func Build(snap Snapshot) StatusJSON {
	return StatusJSON{Status: buildInner(snap)}
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(Build(snap), "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
