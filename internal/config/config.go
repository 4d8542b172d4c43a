// Package config loads the controller configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sweeney/grow-controller/internal/gpio"
	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
	"github.com/sweeney/grow-controller/internal/sensor"
)

// EnvPrefix prefixes every environment override, e.g.
// GROW_CONTROLLER_SCHEDULE_LIGHT_ON.
const EnvPrefix = "GROW_CONTROLLER"

// Sensor drivers.
const (
	DriverSHT31 = "sht31"
	DriverDHT22 = "dht22"
)

// Config is the full controller configuration.
type Config struct {
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	GPIO     GPIOConfig     `mapstructure:"gpio"`
	Datalog  DatalogConfig  `mapstructure:"datalog"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Influx   InfluxConfig   `mapstructure:"influx"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// ScheduleConfig holds the light times and every period.
type ScheduleConfig struct {
	LightOn                 string        `mapstructure:"light_on"`
	LightOff                string        `mapstructure:"light_off"`
	LogInterval             time.Duration `mapstructure:"log_interval"`
	HumidityCheckInterval   time.Duration `mapstructure:"humidity_check_interval"`
	HumidityThreshold       float64       `mapstructure:"humidity_threshold"`
	MisterPeriod            time.Duration `mapstructure:"mister_period"`
	FanInterval             time.Duration `mapstructure:"fan_interval"`
	FanAirExchange          time.Duration `mapstructure:"fan_air_exchange"`
	FanMistFlush            time.Duration `mapstructure:"fan_mist_flush"`
	FanWait                 time.Duration `mapstructure:"fan_wait"`
	SampleCount             int           `mapstructure:"sample_count"`
	FirstLogDelay           time.Duration `mapstructure:"first_log_delay"`
	FirstHumidityCheckDelay time.Duration `mapstructure:"first_humidity_check_delay"`
}

// LoopConfig controls the control loop cadence.
type LoopConfig struct {
	Poll     time.Duration `mapstructure:"poll"` // 0 busy-polls
	Strategy string        `mapstructure:"strategy"`
}

// SensorConfig selects and addresses the sensor.
type SensorConfig struct {
	Driver     string `mapstructure:"driver"`
	I2CBus     int    `mapstructure:"i2c_bus"`
	I2CAddr    int    `mapstructure:"i2c_addr"`
	DHTPin     int    `mapstructure:"dht_pin"`
	DHTRetries int    `mapstructure:"dht_retries"`
	FailFast   bool   `mapstructure:"fail_fast"`
}

// PinConfig is one output line.
type PinConfig struct {
	Line      int  `mapstructure:"line"`
	ActiveLow bool `mapstructure:"active_low"`
}

// GPIOConfig holds the chip and output lines.
type GPIOConfig struct {
	Chip string               `mapstructure:"chip"`
	Pins map[string]PinConfig `mapstructure:"pins"`
}

// DatalogConfig is the primary reading log.
type DatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SQLiteConfig enables the history database when Path is set.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// InfluxConfig enables InfluxDB when URL is set.
type InfluxConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
	Host   string `mapstructure:"host"`
}

// MQTTConfig enables publishing when Broker is set.
type MQTTConfig struct {
	Broker    string        `mapstructure:"broker"`
	Heartbeat time.Duration `mapstructure:"heartbeat"` // 0 disables
}

// HTTPConfig enables the status server when Addr is set.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig sets the diagnostic log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with every default set and environment
// overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults sets the stock grow chamber configuration.
func SetDefaults(v *viper.Viper) {
	s := logic.DefaultSchedule()
	v.SetDefault("schedule.light_on", s.LightOn.String())
	v.SetDefault("schedule.light_off", s.LightOff.String())
	v.SetDefault("schedule.log_interval", s.LogInterval)
	v.SetDefault("schedule.humidity_check_interval", s.HumidityCheckInterval)
	v.SetDefault("schedule.humidity_threshold", s.HumidityThreshold)
	v.SetDefault("schedule.mister_period", s.MisterPeriod)
	v.SetDefault("schedule.fan_interval", s.FanInterval)
	v.SetDefault("schedule.fan_air_exchange", s.FanAirExchange)
	v.SetDefault("schedule.fan_mist_flush", s.FanMistFlush)
	v.SetDefault("schedule.fan_wait", s.FanWait)
	v.SetDefault("schedule.sample_count", s.SampleCount)
	v.SetDefault("schedule.first_log_delay", s.FirstLogDelay)
	v.SetDefault("schedule.first_humidity_check_delay", s.FirstHumidityCheckDelay)

	v.SetDefault("loop.poll", 100*time.Millisecond)
	v.SetDefault("loop.strategy", s.Strategy.String())

	v.SetDefault("sensor.driver", DriverSHT31)
	v.SetDefault("sensor.i2c_bus", sensor.DefaultI2CBus)
	v.SetDefault("sensor.i2c_addr", sensor.DefaultI2CAddr)
	v.SetDefault("sensor.dht_pin", 4)
	v.SetDefault("sensor.dht_retries", sensor.DefaultDHTRetries)
	v.SetDefault("sensor.fail_fast", s.FailFast)

	v.SetDefault("gpio.chip", "gpiochip0")
	for _, p := range gpio.DefaultPins() {
		v.SetDefault("gpio.pins."+string(p.ID)+".line", p.Line)
		v.SetDefault("gpio.pins."+string(p.ID)+".active_low", p.ActiveLow)
	}

	v.SetDefault("datalog.path", "log_file.csv")
	v.SetDefault("sqlite.path", "")
	v.SetDefault("influx.url", "")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "")
	v.SetDefault("influx.bucket", "grow")
	v.SetDefault("influx.host", defaultHost())
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.heartbeat", 15*time.Minute)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", logger.InfoLevel)
}

func defaultHost() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "grow-controller"
	}
	return h
}

// Load unmarshals and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration as a whole.
func (c Config) Validate() error {
	var errs []error

	sched, err := c.BuildSchedule()
	if err != nil {
		errs = append(errs, err)
	} else if err := sched.Validate(); err != nil {
		errs = append(errs, err)
	} else if sched.Strategy == logic.StrategyExact && c.Loop.Poll > time.Second {
		errs = append(errs, fmt.Errorf("loop poll %v must not exceed 1s with the exact strategy", c.Loop.Poll))
	}
	if c.Loop.Poll < 0 {
		errs = append(errs, fmt.Errorf("loop poll %v must not be negative", c.Loop.Poll))
	}

	switch c.Sensor.Driver {
	case DriverSHT31:
		if c.Sensor.I2CAddr < 0 || c.Sensor.I2CAddr > 0x7F {
			errs = append(errs, fmt.Errorf("i2c address 0x%x out of range", c.Sensor.I2CAddr))
		}
	case DriverDHT22:
	default:
		errs = append(errs, fmt.Errorf("unknown sensor driver %q", c.Sensor.Driver))
	}

	if _, err := c.Pins(); err != nil {
		errs = append(errs, err)
	}
	if c.Datalog.Path == "" {
		errs = append(errs, errors.New("datalog path must be set"))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if c.MQTT.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("mqtt heartbeat %v must not be negative", c.MQTT.Heartbeat))
	}

	return errors.Join(errs...)
}

// BuildSchedule converts the schedule section for the controller.
func (c Config) BuildSchedule() (logic.Schedule, error) {
	on, err := logic.ParseTimeOfDay(c.Schedule.LightOn)
	if err != nil {
		return logic.Schedule{}, fmt.Errorf("light_on: %w", err)
	}
	off, err := logic.ParseTimeOfDay(c.Schedule.LightOff)
	if err != nil {
		return logic.Schedule{}, fmt.Errorf("light_off: %w", err)
	}
	strategy, err := logic.ParseStrategy(c.Loop.Strategy)
	if err != nil {
		return logic.Schedule{}, err
	}

	s := c.Schedule
	return logic.Schedule{
		LightOn:                 on,
		LightOff:                off,
		LogInterval:             s.LogInterval,
		HumidityCheckInterval:   s.HumidityCheckInterval,
		HumidityThreshold:       s.HumidityThreshold,
		MisterPeriod:            s.MisterPeriod,
		FanInterval:             s.FanInterval,
		FanAirExchange:          s.FanAirExchange,
		FanMistFlush:            s.FanMistFlush,
		FanWait:                 s.FanWait,
		SampleCount:             s.SampleCount,
		FirstLogDelay:           s.FirstLogDelay,
		FirstHumidityCheckDelay: s.FirstHumidityCheckDelay,
		Strategy:                strategy,
		FailFast:                c.Sensor.FailFast,
	}, nil
}

// Pins returns the output lines in the default order. Every output must be
// configured and no two may share a line.
func (c Config) Pins() ([]gpio.Pin, error) {
	var pins []gpio.Pin
	used := make(map[int]gpio.OutputID)

	for _, def := range gpio.DefaultPins() {
		pc, ok := c.GPIO.Pins[string(def.ID)]
		if !ok {
			return nil, fmt.Errorf("gpio pin %s not configured", def.ID)
		}
		if prev, dup := used[pc.Line]; dup {
			return nil, fmt.Errorf("gpio line %d used by both %s and %s", pc.Line, prev, def.ID)
		}
		used[pc.Line] = def.ID
		pins = append(pins, gpio.Pin{ID: def.ID, Line: pc.Line, ActiveLow: pc.ActiveLow})
	}
	return pins, nil
}
