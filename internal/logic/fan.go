package logic

import "time"

// FanStartRequest asks the fan to start at a given time. It replaces any
// start the fan already has pending. Reason is reported as the planned
// cause until the start fires; the run length is still chosen from the
// mister state at that instant.
type FanStartRequest struct {
	At     TimeOfDay
	Reason Reason
}

// Fan runs periodic air exchange and flushes the chamber after misting.
// It has a single start timer shared by both causes and one stop timer.
type Fan struct {
	interval    time.Duration
	airExchange time.Duration
	mistFlush   time.Duration

	running bool
	reason  Reason
	planned Reason // cause of the pending start
	start   Timer
	stop    Timer
}

// NewFan creates a fan that starts every interval and runs for airExchange,
// or for mistFlush when it starts while the mister is running.
func NewFan(interval, airExchange, mistFlush time.Duration) *Fan {
	return &Fan{
		interval:    interval,
		airExchange: airExchange,
		mistFlush:   mistFlush,
	}
}

// Start arms the first periodic air exchange.
func (f *Fan) Start(now TimeOfDay) {
	f.start.Reschedule(now, f.interval)
	f.planned = ReasonAirExchange
}

// Request overrides the pending start with req.
func (f *Fan) Request(now TimeOfDay, req FanStartRequest) {
	f.start.ScheduleAt(now, req.At)
	f.planned = req.Reason
}

// Planned returns the reason of the pending start, or "" when none is armed.
func (f *Fan) Planned() Reason {
	if _, ok := f.start.Next(); !ok {
		return ""
	}
	return f.planned
}

// TickStart turns the fan on if its start timer is due. misting is the
// mister's state at this instant and selects the run duration.
func (f *Fan) TickStart(now TimeOfDay, s Strategy, misting bool) (Reason, TimeOfDay, bool) {
	if !f.start.Due(now, s) {
		return "", 0, false
	}
	f.start.Reschedule(now, f.interval)
	f.planned = ReasonAirExchange

	f.reason = ReasonAirExchange
	period := f.airExchange
	if misting {
		f.reason = ReasonMistFlush
		period = f.mistFlush
	}
	f.running = true
	f.stop.Reschedule(now, period)
	until, _ := f.stop.Next()
	return f.reason, until, true
}

// TickStop turns the fan off if its stop timer is due.
func (f *Fan) TickStop(now TimeOfDay, s Strategy) bool {
	if !f.stop.Due(now, s) {
		return false
	}
	f.stop.Clear()
	f.running = false
	f.reason = ""
	return true
}

// Running reports whether the fan is on.
func (f *Fan) Running() bool {
	return f.running
}

// Reason returns why the fan is running.
func (f *Fan) Reason() Reason {
	return f.reason
}
