// Package metrics exposes controller activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/grow-controller/internal/logic"
)

const namespace = "grow"

// Metrics holds the controller collectors.
type Metrics struct {
	events      *prometheus.CounterVec
	actuator    *prometheus.GaugeVec
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	sinkErrors  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "events_total",
			Help:      "total number of controller events by type",
		},
			[]string{"type"},
		),
		actuator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "actuator_on",
			Help:      "1 if the actuator is on",
		},
			[]string{"actuator"},
		),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "temperature_celsius",
			Help:      "last averaged temperature",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "relative_humidity_percent",
			Help:      "last averaged relative humidity",
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datalog",
			Name:      "write_errors_total",
			Help:      "total number of failed secondary sink writes",
		},
			[]string{"sink"},
		),
	}
	reg.MustRegister(m.events, m.actuator, m.temperature, m.humidity, m.sinkErrors)
	return m
}

// Observe records one controller event.
func (m *Metrics) Observe(ev logic.Event) {
	m.events.WithLabelValues(string(ev.Type)).Inc()

	if act, on, ok := ev.Actuation(); ok {
		v := 0.0
		if on {
			v = 1
		}
		m.actuator.WithLabelValues(string(act)).Set(v)
	}
	if ev.Type == logic.EventReading && ev.Reading != nil {
		m.temperature.Set(ev.Reading.Temperature)
		m.humidity.Set(ev.Reading.Humidity)
	}
}

// SinkError counts a failed write to the named sink.
func (m *Metrics) SinkError(name string, _ error) {
	m.sinkErrors.WithLabelValues(name).Inc()
}
