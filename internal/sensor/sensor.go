// Package sensor reads chamber temperature and relative humidity.
package sensor

import (
	"fmt"

	"github.com/sweeney/grow-controller/internal/logic"
)

// Sensor is a blocking temperature and humidity source.
type Sensor interface {
	// Temperature returns the current temperature in °C.
	Temperature() (float64, error)
	// Humidity returns the current relative humidity in %.
	Humidity() (float64, error)
	Close() error
}

// Sampler averages n consecutive reads of a Sensor.
type Sampler struct {
	s Sensor
	n int
}

// NewSampler creates a sampler taking n reads per sample. n below 1 is
// treated as 1.
func NewSampler(s Sensor, n int) *Sampler {
	if n < 1 {
		n = 1
	}
	return &Sampler{s: s, n: n}
}

// Sample reads temperature then humidity n times and returns the means.
// The first failed read aborts the sample.
func (p *Sampler) Sample() (logic.Reading, error) {
	var temp, hum float64
	for i := 0; i < p.n; i++ {
		t, err := p.s.Temperature()
		if err != nil {
			return logic.Reading{}, fmt.Errorf("read %d/%d temperature: %w", i+1, p.n, err)
		}
		h, err := p.s.Humidity()
		if err != nil {
			return logic.Reading{}, fmt.Errorf("read %d/%d humidity: %w", i+1, p.n, err)
		}
		temp += t
		hum += h
	}
	return logic.Reading{
		Temperature: temp / float64(p.n),
		Humidity:    hum / float64(p.n),
	}, nil
}

// Read takes a single, unaveraged reading.
func Read(s Sensor) (logic.Reading, error) {
	return NewSampler(s, 1).Sample()
}
