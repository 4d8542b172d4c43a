// Package mqtt publishes controller events over MQTT.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/grow-controller/internal/logic"
)

// Topics.
const (
	TopicEvents   = "grow/controller/events"
	TopicReadings = "grow/controller/readings"
	TopicSystem   = "grow/controller/system"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event. Failures must not stop the
	// controller.
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// BufferStatus reports how many messages are waiting to reach the broker.
type BufferStatus interface {
	Buffered() int
}

// SystemEvent is a lifecycle event: STARTUP, HEARTBEAT, SHUTDOWN or
// RECONNECTED.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // SHUTDOWN only, e.g. "SIGTERM"
	RawPayload []byte // if set, sent as is (full status snapshot)
	Retained   bool
}

// TopicFor returns the topic an event is published on.
func TopicFor(event logic.Event) string {
	if event.Type == logic.EventReading {
		return TopicReadings
	}
	return TopicEvents
}

// Payload is the MQTT message for a controller event.
type Payload struct {
	Grow EventPayload `json:"grow"`
}

// EventPayload contains the event details. Fields that do not apply to the
// event type are omitted.
type EventPayload struct {
	Timestamp   string   `json:"timestamp"`
	Event       string   `json:"event"`
	Actuator    string   `json:"actuator,omitempty"`
	State       string   `json:"state,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Until       string   `json:"until,omitempty"`
	Startup     bool     `json:"startup,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := EventPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Reason:    string(event.Reason),
		Startup:   event.Startup,
	}
	if act, on, ok := event.Actuation(); ok {
		p.Actuator = string(act)
		p.State = string(logic.StateOff)
		if on {
			p.State = string(logic.StateOn)
		}
	}
	if event.Until != nil {
		p.Until = event.Until.String()
	}
	if r := event.Reading; r != nil {
		h := r.Humidity
		p.Humidity = &h
		if event.Type == logic.EventReading {
			t := r.Temperature
			p.Temperature = &t
		}
	}
	if event.Err != nil {
		p.Error = event.Err.Error()
	}
	return json.Marshal(Payload{Grow: p})
}

// SystemPayload is the message for simple system events (LWT, RECONNECTED)
// that carry no status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// RawPayload is returned unchanged when set.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
