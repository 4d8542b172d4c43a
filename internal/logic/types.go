// Package logic contains the pure scheduling and actuator state-machine logic
// of the grow chamber controller.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// State represents the logical state of an actuator.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

func stateOf(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// Actuator names a group of outputs driven together.
type Actuator string

const (
	ActuatorLights Actuator = "lights"
	ActuatorFan    Actuator = "fan"
	ActuatorMister Actuator = "mister"
)

// EventType represents something the controller did on a tick.
type EventType string

const (
	EventLightsOn      EventType = "LIGHTS_ON"
	EventLightsOff     EventType = "LIGHTS_OFF"
	EventFanOn         EventType = "FAN_ON"
	EventFanOff        EventType = "FAN_OFF"
	EventMisterOn      EventType = "MISTER_ON"
	EventMisterOff     EventType = "MISTER_OFF"
	EventReading       EventType = "READING"
	EventSampleFailed  EventType = "SAMPLE_FAILED"
	EventHumidityCheck EventType = "HUMIDITY_CHECK"
)

// Reason is why the fan was started.
type Reason string

const (
	ReasonAirExchange Reason = "AIR_EXCHANGE"
	ReasonMistFlush   Reason = "MIST_FLUSH"
)

// Reading is one averaged sensor sample.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // % RH
}

// Event is emitted by the controller. Actuator events must be applied to the
// outputs by the caller.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Reason    Reason     // FAN_ON only
	Until     *TimeOfDay // planned off time for FAN_ON and MISTER_ON
	Reading   *Reading   // READING and HUMIDITY_CHECK
	Startup   bool       // initial light decision
	Err       error      // SAMPLE_FAILED
}

// Actuation returns the actuator and target state for events that switch an
// output.
func (e Event) Actuation() (Actuator, bool, bool) {
	switch e.Type {
	case EventLightsOn:
		return ActuatorLights, true, true
	case EventLightsOff:
		return ActuatorLights, false, true
	case EventFanOn:
		return ActuatorFan, true, true
	case EventFanOff:
		return ActuatorFan, false, true
	case EventMisterOn:
		return ActuatorMister, true, true
	case EventMisterOff:
		return ActuatorMister, false, true
	}
	return "", false, false
}

// Lines returns the operator notification lines for the event.
func (e Event) Lines() []string {
	switch e.Type {
	case EventLightsOn:
		if e.Startup {
			return []string{"Lights ON (startup)"}
		}
		return []string{"Lights ON"}
	case EventLightsOff:
		if e.Startup {
			return []string{"Lights OFF (startup)"}
		}
		return []string{"Lights OFF"}
	case EventFanOn:
		if e.Until != nil {
			return []string{fmt.Sprintf("Fan ON (%s until %s)", e.Reason, e.Until)}
		}
		return []string{"Fan ON"}
	case EventFanOff:
		return []string{"Fan OFF"}
	case EventMisterOn:
		if e.Until != nil {
			return []string{fmt.Sprintf("Mister ON (until %s)", e.Until)}
		}
		return []string{"Mister ON"}
	case EventMisterOff:
		return []string{"Mister OFF"}
	case EventReading:
		return []string{
			"Logging sensor data",
			fmt.Sprintf("Temperature: %0.1f C", e.Reading.Temperature),
			fmt.Sprintf("Humidity: %0.1f %%", e.Reading.Humidity),
		}
	case EventSampleFailed:
		return []string{fmt.Sprintf("Logging sensor data failed: %v", e.Err)}
	case EventHumidityCheck:
		return []string{
			"Checking humidity level",
			fmt.Sprintf("Humidity: %0.1f %%", e.Reading.Humidity),
		}
	}
	return []string{string(e.Type)}
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	LightsOn      int
	LightsOff     int
	FanOn         int
	FanOff        int
	MisterOn      int
	MisterOff     int
	Readings      int
	SampleFailed  int
	HumidityCheck int
}

func (c *EventCounts) add(t EventType) {
	switch t {
	case EventLightsOn:
		c.LightsOn++
	case EventLightsOff:
		c.LightsOff++
	case EventFanOn:
		c.FanOn++
	case EventFanOff:
		c.FanOff++
	case EventMisterOn:
		c.MisterOn++
	case EventMisterOff:
		c.MisterOff++
	case EventReading:
		c.Readings++
	case EventSampleFailed:
		c.SampleFailed++
	case EventHumidityCheck:
		c.HumidityCheck++
	}
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	Lights State
	Fan    State
	Mister State

	NextLight      *TimeOfDay
	NextFanStart   *TimeOfDay
	NextFanReason  Reason
	NextFanStop    *TimeOfDay
	NextMisterStop *TimeOfDay
	NextLog        *TimeOfDay
	NextCheck      *TimeOfDay

	LastReading *Reading
	Counts      EventCounts
}
