package gpio

// Write records a single Set call.
type Write struct {
	ID OutputID
	On bool
}

// FakeWriter is a test double that keeps raw line values in memory.
type FakeWriter struct {
	pins map[OutputID]Pin

	// Raw holds the current line value per output.
	Raw map[OutputID]int

	// Writes records every successful Set in order.
	Writes []Write

	// SetError, if set, will be returned by Set().
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeWriter creates a FakeWriter with every pin at logical OFF.
func NewFakeWriter(pins []Pin) *FakeWriter {
	f := &FakeWriter{
		pins: make(map[OutputID]Pin, len(pins)),
		Raw:  make(map[OutputID]int, len(pins)),
	}
	for _, p := range pins {
		f.pins[p.ID] = p
		f.Raw[p.ID] = RawValue(false, p.ActiveLow)
	}
	return f
}

// Set stores the raw value for the logical state.
func (f *FakeWriter) Set(id OutputID, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	p, ok := f.pins[id]
	if !ok {
		return &UnknownOutputError{ID: id}
	}
	f.Raw[id] = RawValue(on, p.ActiveLow)
	f.Writes = append(f.Writes, Write{ID: id, On: on})
	return nil
}

// Get returns the logical state of the stored raw value.
func (f *FakeWriter) Get(id OutputID) (bool, error) {
	p, ok := f.pins[id]
	if !ok {
		return false, &UnknownOutputError{ID: id}
	}
	return Logical(f.Raw[id], p.ActiveLow), nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeWriter) Reset() {
	f.Writes = nil
	f.SetError = nil
	f.Closed = false
}
