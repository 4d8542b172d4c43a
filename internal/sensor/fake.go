package sensor

import "sync"

// FakeSensor is a test double returning queued values.
type FakeSensor struct {
	mu sync.Mutex

	// Temps and Hums are returned in order; the last value repeats.
	Temps []float64
	Hums  []float64

	// Err, if set, is returned by every read.
	Err error

	// FailAfter, if positive, makes reads fail once that many temperature
	// reads have succeeded.
	FailAfter int

	TempReads int
	HumReads  int
	Closed    bool
}

// NewFakeSensor creates a FakeSensor that always reads temp and hum.
func NewFakeSensor(temp, hum float64) *FakeSensor {
	return &FakeSensor{Temps: []float64{temp}, Hums: []float64{hum}}
}

// Temperature returns the next queued temperature.
func (f *FakeSensor) Temperature() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil && (f.FailAfter <= 0 || f.TempReads >= f.FailAfter) {
		return 0, f.Err
	}
	v := pick(f.Temps, f.TempReads)
	f.TempReads++
	return v, nil
}

// Humidity returns the next queued humidity.
func (f *FakeSensor) Humidity() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil && f.FailAfter <= 0 {
		return 0, f.Err
	}
	v := pick(f.Hums, f.HumReads)
	f.HumReads++
	return v, nil
}

// Close marks the sensor closed.
func (f *FakeSensor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func pick(vals []float64, i int) float64 {
	if len(vals) == 0 {
		return 0
	}
	if i >= len(vals) {
		return vals[len(vals)-1]
	}
	return vals[i]
}
