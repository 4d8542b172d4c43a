// Package gpio provides binary output driving with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// OutputID names a physical output.
type OutputID string

const (
	OutputLightA      OutputID = "light_a"
	OutputLightB      OutputID = "light_b"
	OutputMister      OutputID = "mister"
	OutputFan         OutputID = "fan"
	OutputSpareRelay  OutputID = "spare_relay"
	OutputSpareMosfet OutputID = "spare_mosfet"
)

// Writer sets and reads binary outputs in logical form.
type Writer interface {
	// Set drives the output to the logical state on.
	// Polarity is applied by the implementation.
	Set(id OutputID, on bool) error

	// Get returns the logical state of the output.
	Get(id OutputID) (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin maps an output to a GPIO line.
type Pin struct {
	ID        OutputID
	Line      int  // BCM number
	ActiveLow bool // raw 0 = logical ON
}

// Pin definitions (BCM numbering)
const (
	DefaultPinLightA      = 17 // relay 1, active-low
	DefaultPinLightB      = 18 // relay 2, active-low
	DefaultPinSpareRelay  = 27 // relay 3, active-low
	DefaultPinMister      = 22 // relay 4, active-low
	DefaultPinSpareMosfet = 26 // MOSFET 1, active-high
	DefaultPinFan         = 19 // MOSFET 2, active-high
)

// DefaultPins returns the grow chamber wiring.
func DefaultPins() []Pin {
	return []Pin{
		{ID: OutputLightA, Line: DefaultPinLightA, ActiveLow: true},
		{ID: OutputLightB, Line: DefaultPinLightB, ActiveLow: true},
		{ID: OutputSpareRelay, Line: DefaultPinSpareRelay, ActiveLow: true},
		{ID: OutputMister, Line: DefaultPinMister, ActiveLow: true},
		{ID: OutputSpareMosfet, Line: DefaultPinSpareMosfet, ActiveLow: false},
		{ID: OutputFan, Line: DefaultPinFan, ActiveLow: false},
	}
}

// RawValue converts a logical state to the line value.
func RawValue(on, activeLow bool) int {
	if on != activeLow {
		return 1
	}
	return 0
}

// Logical converts a line value to a logical state.
func Logical(raw int, activeLow bool) bool {
	return (raw != 0) != activeLow
}

// UnknownOutputError is returned for an output that was not configured.
type UnknownOutputError struct {
	ID OutputID
}

func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("gpio: unknown output %q", e.ID)
}
