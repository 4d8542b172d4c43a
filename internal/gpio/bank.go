package gpio

import (
	"fmt"

	"github.com/sweeney/grow-controller/internal/logic"
)

// Layout assigns outputs to actuators.
type Layout struct {
	Lights []OutputID // driven identically
	Fan    OutputID
	Mister OutputID
	Spares []OutputID // held OFF
}

// DefaultLayout matches DefaultPins.
func DefaultLayout() Layout {
	return Layout{
		Lights: []OutputID{OutputLightA, OutputLightB},
		Fan:    OutputFan,
		Mister: OutputMister,
		Spares: []OutputID{OutputSpareRelay, OutputSpareMosfet},
	}
}

// Bank applies controller events to outputs.
type Bank struct {
	w      Writer
	layout Layout
}

// NewBank creates a Bank writing through w.
func NewBank(w Writer, layout Layout) *Bank {
	return &Bank{w: w, layout: layout}
}

// Init drives the fan, mister and spare outputs OFF. Lights are left to
// the controller's startup decision.
func (b *Bank) Init() error {
	for _, id := range b.layout.Spares {
		if err := b.w.Set(id, false); err != nil {
			return fmt.Errorf("init %s: %w", id, err)
		}
	}
	if err := b.Set(logic.ActuatorMister, false); err != nil {
		return fmt.Errorf("init mister: %w", err)
	}
	if err := b.Set(logic.ActuatorFan, false); err != nil {
		return fmt.Errorf("init fan: %w", err)
	}
	return nil
}

// Apply switches the outputs for an actuator event. Other events are
// ignored.
func (b *Bank) Apply(ev logic.Event) error {
	act, on, ok := ev.Actuation()
	if !ok {
		return nil
	}
	return b.Set(act, on)
}

// Set drives every output of the actuator.
func (b *Bank) Set(act logic.Actuator, on bool) error {
	ids, err := b.outputs(act)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := b.w.Set(id, on); err != nil {
			return fmt.Errorf("%s: %w", act, err)
		}
	}
	return nil
}

// State reads back the actuator. The light pair must agree.
func (b *Bank) State(act logic.Actuator) (bool, error) {
	ids, err := b.outputs(act)
	if err != nil {
		return false, err
	}
	var state bool
	for i, id := range ids {
		on, err := b.w.Get(id)
		if err != nil {
			return false, fmt.Errorf("%s: %w", act, err)
		}
		if i > 0 && on != state {
			return false, fmt.Errorf("%s: outputs disagree (%s=%v)", act, id, on)
		}
		state = on
	}
	return state, nil
}

// Shutdown turns the fan and mister off. Lights keep their state.
func (b *Bank) Shutdown() error {
	var errs []error
	if err := b.Set(logic.ActuatorMister, false); err != nil {
		errs = append(errs, err)
	}
	if err := b.Set(logic.ActuatorFan, false); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %v", errs)
	}
	return nil
}

func (b *Bank) outputs(act logic.Actuator) ([]OutputID, error) {
	switch act {
	case logic.ActuatorLights:
		return b.layout.Lights, nil
	case logic.ActuatorFan:
		return []OutputID{b.layout.Fan}, nil
	case logic.ActuatorMister:
		return []OutputID{b.layout.Mister}, nil
	}
	return nil, fmt.Errorf("gpio: unknown actuator %q", act)
}
