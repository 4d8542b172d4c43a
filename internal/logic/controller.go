package logic

import (
	"fmt"
	"time"
)

// Sampler takes one averaged sensor sample. It may block.
type Sampler interface {
	Sample() (Reading, error)
}

// Controller owns every timer and state machine of the chamber. It is not
// safe for concurrent use; the control loop is its only caller.
type Controller struct {
	sched   Schedule
	sampler Sampler

	light  *Light
	fan    *Fan
	mister *Mister
	logs   Timer

	last    Reading
	hasLast bool
	counts  EventCounts
}

// NewController creates a controller for the given schedule.
func NewController(sched Schedule, sampler Sampler) *Controller {
	return &Controller{
		sched:   sched,
		sampler: sampler,
		light:   NewLight(sched.LightOn, sched.LightOff),
		fan:     NewFan(sched.FanInterval, sched.FanAirExchange, sched.FanMistFlush),
		mister:  NewMister(sched.HumidityCheckInterval, sched.MisterPeriod, sched.FanWait, sched.HumidityThreshold),
	}
}

// Start sets the initial light state and arms the first log, humidity
// check and fan cycle. initial is the reading taken at startup and is used
// by humidity checks until the first logged average.
// The fan and mister are expected to be off already.
func (c *Controller) Start(now time.Time, initial Reading) []Event {
	tod := FromTime(now)

	c.last = initial
	c.hasLast = true

	c.logs.Reschedule(tod, c.sched.FirstLogDelay)
	c.mister.Start(tod, c.sched.FirstHumidityCheckDelay)
	c.fan.Start(tod)

	ev := Event{Timestamp: now, Type: EventLightsOff, Startup: true}
	if c.light.Start(tod) {
		ev.Type = EventLightsOn
	}
	c.counts.add(ev.Type)
	return []Event{ev}
}

// Tick advances every state machine to now and returns what happened, in
// order. An error is only returned for a sample failure when the schedule
// is fail-fast.
func (c *Controller) Tick(now time.Time) ([]Event, error) {
	tod := FromTime(now)
	s := c.sched.Strategy
	var events []Event

	emit := func(e Event) {
		e.Timestamp = now
		c.counts.add(e.Type)
		events = append(events, e)
	}

	if c.logs.Due(tod, s) {
		c.logs.Reschedule(tod, c.sched.LogInterval)
		r, err := c.sampler.Sample()
		if err != nil {
			if c.sched.FailFast {
				return events, fmt.Errorf("sample sensor: %w", err)
			}
			emit(Event{Type: EventSampleFailed, Err: err})
		} else {
			c.last = r
			c.hasLast = true
			emit(Event{Type: EventReading, Reading: &r})
		}
	}

	if reason, until, ok := c.fan.TickStart(tod, s, c.mister.Running()); ok {
		emit(Event{Type: EventFanOn, Reason: reason, Until: &until})
	}

	if c.fan.TickStop(tod, s) {
		emit(Event{Type: EventFanOff})
	}

	if res, ok := c.mister.TickCheck(tod, s, c.last.Humidity); ok {
		r := c.last
		emit(Event{Type: EventHumidityCheck, Reading: &r})
		if res.Started {
			until := res.Until
			emit(Event{Type: EventMisterOn, Until: &until})
			c.fan.Request(tod, *res.Fan)
		}
	}

	if c.mister.TickStop(tod, s) {
		emit(Event{Type: EventMisterOff})
	}

	if t, ok := c.light.Tick(tod, s); ok {
		emit(Event{Type: t})
	}

	return events, nil
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Lights:         stateOf(c.light.On()),
		Fan:            stateOf(c.fan.Running()),
		Mister:         stateOf(c.mister.Running()),
		NextLight:      c.light.timer.nextPtr(),
		NextFanStart:   c.fan.start.nextPtr(),
		NextFanReason:  c.fan.Planned(),
		NextFanStop:    c.fan.stop.nextPtr(),
		NextMisterStop: c.mister.stop.nextPtr(),
		NextLog:        c.logs.nextPtr(),
		NextCheck:      c.mister.check.nextPtr(),
		Counts:         c.counts,
	}
	if c.hasLast {
		r := c.last
		snap.LastReading = &r
	}
	return snap
}

// LastReading returns the most recent average, which humidity checks use.
func (c *Controller) LastReading() (Reading, bool) {
	return c.last, c.hasLast
}

// Schedule returns the controller's schedule.
func (c *Controller) Schedule() Schedule {
	return c.sched
}
