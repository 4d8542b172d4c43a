package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/grow-controller/internal/logic"
)

func TestObserve(t *testing.T) {
	r := prometheus.NewRegistry()
	m := New(r)

	m.Observe(logic.Event{Type: logic.EventLightsOn, Startup: true})
	m.Observe(logic.Event{Type: logic.EventFanOn, Reason: logic.ReasonAirExchange})
	m.Observe(logic.Event{Type: logic.EventFanOff})
	m.Observe(logic.Event{Type: logic.EventFanOn, Reason: logic.ReasonMistFlush})
	m.Observe(logic.Event{Type: logic.EventReading, Reading: &logic.Reading{Temperature: 22.5, Humidity: 87}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("FAN_ON")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("READING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actuator.WithLabelValues("fan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actuator.WithLabelValues("lights")))
	assert.Equal(t, 22.5, testutil.ToFloat64(m.temperature))
	assert.Equal(t, 87.0, testutil.ToFloat64(m.humidity))
}

func TestSinkError(t *testing.T) {
	r := prometheus.NewRegistry()
	m := New(r)

	m.SinkError("influx", errors.New("timeout"))
	m.SinkError("influx", errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sinkErrors.WithLabelValues("influx")))

	families, err := r.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "grow_datalog_write_errors_total")
}
