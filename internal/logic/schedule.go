package logic

import (
	"errors"
	"fmt"
	"time"
)

// Schedule holds every period and threshold the controller runs on.
// It is fixed for the life of the process.
type Schedule struct {
	LightOn  TimeOfDay
	LightOff TimeOfDay

	LogInterval           time.Duration
	HumidityCheckInterval time.Duration
	HumidityThreshold     float64 // % RH; misting starts below this
	MisterPeriod          time.Duration
	FanInterval           time.Duration
	FanAirExchange        time.Duration // fan run time for air exchange
	FanMistFlush          time.Duration // fan run time after misting
	FanWait               time.Duration // mister start to fan start
	SampleCount           int

	FirstLogDelay           time.Duration
	FirstHumidityCheckDelay time.Duration

	Strategy Strategy
	FailFast bool // sample failures stop the controller
}

// DefaultSchedule returns the grow chamber's stock settings.
func DefaultSchedule() Schedule {
	return Schedule{
		LightOn:                 NewTimeOfDay(7, 30, 0),
		LightOff:                NewTimeOfDay(19, 30, 0),
		LogInterval:             2 * time.Minute,
		HumidityCheckInterval:   12 * time.Minute,
		HumidityThreshold:       90,
		MisterPeriod:            3 * time.Minute,
		FanInterval:             20 * time.Minute,
		FanAirExchange:          16 * time.Second,
		FanMistFlush:            8 * time.Second,
		FanWait:                 3 * time.Minute,
		SampleCount:             10,
		FirstLogDelay:           2 * time.Second,
		FirstHumidityCheckDelay: time.Minute,
		Strategy:                StrategyExact,
	}
}

// Validate checks the periods against each other so that misting and fan
// sequences never overlap.
func (s Schedule) Validate() error {
	var errs []error

	periods := []struct {
		name string
		d    time.Duration
	}{
		{"log interval", s.LogInterval},
		{"humidity check interval", s.HumidityCheckInterval},
		{"mister period", s.MisterPeriod},
		{"fan interval", s.FanInterval},
		{"fan air exchange period", s.FanAirExchange},
		{"fan mist flush period", s.FanMistFlush},
		{"fan wait", s.FanWait},
		{"first log delay", s.FirstLogDelay},
		{"first humidity check delay", s.FirstHumidityCheckDelay},
	}
	for _, p := range periods {
		if p.d < time.Second || p.d >= Day {
			errs = append(errs, fmt.Errorf("%s %v must be in [1s, 24h)", p.name, p.d))
		}
	}

	if s.LightOn == s.LightOff {
		errs = append(errs, fmt.Errorf("light on and off times are both %s", s.LightOn))
	}
	if s.SampleCount < 1 {
		errs = append(errs, fmt.Errorf("sample count %d must be at least 1", s.SampleCount))
	}
	if s.FanWait > s.MisterPeriod {
		errs = append(errs, fmt.Errorf("fan wait %v must not exceed mister period %v", s.FanWait, s.MisterPeriod))
	}
	if limit := s.HumidityCheckInterval - (s.MisterPeriod + s.FanWait); s.MisterPeriod >= limit {
		errs = append(errs, fmt.Errorf("mister period %v must be less than humidity check interval minus mister period and fan wait (%v)", s.MisterPeriod, limit))
	}

	return errors.Join(errs...)
}
