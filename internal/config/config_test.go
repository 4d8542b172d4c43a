package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/grow-controller/internal/gpio"
	"github.com/sweeney/grow-controller/internal/logic"
)

func TestDefaultsMatchStockSchedule(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	sched, err := c.BuildSchedule()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultSchedule(), sched)

	assert.Equal(t, 100*time.Millisecond, c.Loop.Poll)
	assert.Equal(t, DriverSHT31, c.Sensor.Driver)
	assert.Equal(t, 1, c.Sensor.I2CBus)
	assert.Equal(t, 0x44, c.Sensor.I2CAddr)
	assert.Equal(t, "log_file.csv", c.Datalog.Path)
	assert.Equal(t, 15*time.Minute, c.MQTT.Heartbeat)
	assert.Empty(t, c.MQTT.Broker)
	assert.Empty(t, c.SQLite.Path)
	assert.Empty(t, c.Influx.URL)
}

func TestDefaultPins(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	pins, err := c.Pins()
	require.NoError(t, err)
	assert.Equal(t, gpio.DefaultPins(), pins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GROW_CONTROLLER_SCHEDULE_LIGHT_ON", "06:00")
	t.Setenv("GROW_CONTROLLER_SCHEDULE_HUMIDITY_THRESHOLD", "85.5")
	t.Setenv("GROW_CONTROLLER_LOOP_STRATEGY", "catchup")
	t.Setenv("GROW_CONTROLLER_LOOP_POLL", "5s")
	t.Setenv("GROW_CONTROLLER_GPIO_PINS_FAN_LINE", "13")

	c, err := Load(New())
	require.NoError(t, err)

	sched, err := c.BuildSchedule()
	require.NoError(t, err)
	assert.Equal(t, logic.NewTimeOfDay(6, 0, 0), sched.LightOn)
	assert.Equal(t, 85.5, sched.HumidityThreshold)
	assert.Equal(t, logic.StrategyCatchUp, sched.Strategy)
	assert.Equal(t, 5*time.Second, c.Loop.Poll)

	pins, err := c.Pins()
	require.NoError(t, err)
	for _, p := range pins {
		if p.ID == gpio.OutputFan {
			assert.Equal(t, 13, p.Line)
		}
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  light_on: "08:00:00"
  light_off: "20:00:00"
  mister_period: 2m
  fan_wait: 1m
sensor:
  driver: dht22
  dht_pin: 17
  fail_fast: true
gpio:
  pins:
    light_a:
      line: 5
mqtt:
  broker: tcp://localhost:1883
`), 0o644))

	v := New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := Load(v)
	require.NoError(t, err)

	sched, err := c.BuildSchedule()
	require.NoError(t, err)
	assert.Equal(t, logic.NewTimeOfDay(8, 0, 0), sched.LightOn)
	assert.Equal(t, 2*time.Minute, sched.MisterPeriod)
	assert.Equal(t, time.Minute, sched.FanWait)
	assert.True(t, sched.FailFast)
	assert.Equal(t, DriverDHT22, c.Sensor.Driver)
	assert.Equal(t, "tcp://localhost:1883", c.MQTT.Broker)

	// Unlisted fields keep their defaults
	assert.Equal(t, 20*time.Minute, sched.FanInterval)
	assert.True(t, c.GPIO.Pins["light_a"].ActiveLow)
	assert.Equal(t, 5, c.GPIO.Pins["light_a"].Line)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{"bad light time", "schedule.light_on", "25:00", "light_on"},
		{"equal light times", "schedule.light_off", "07:30:00", "light on and off"},
		{"mister too long", "schedule.mister_period", 5 * time.Minute, "mister period"},
		{"zero samples", "schedule.sample_count", 0, "sample count"},
		{"unknown strategy", "loop.strategy", "lazy", "strategy"},
		{"slow exact poll", "loop.poll", 2 * time.Second, "exact strategy"},
		{"unknown driver", "sensor.driver", "bme280", "sensor driver"},
		{"shared line", "gpio.pins.fan.line", 17, "used by both"},
		{"bad level", "log.level", "chatty", "log level"},
		{"no datalog", "datalog.path", "", "datalog path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(New(), &buf))

	out := buf.String()
	assert.Contains(t, out, "schedule:")
	assert.Contains(t, out, "log_interval: 2m0s")
	assert.Contains(t, out, "fan_air_exchange: 16s")
	assert.Contains(t, out, "07:30:00")
	assert.Contains(t, out, "spare_relay:")
}
