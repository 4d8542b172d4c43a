package logic

import (
	"fmt"
	"strings"
	"time"
)

// Strategy decides when an armed Timer counts as due.
type Strategy int

const (
	// StrategyExact fires only on the tick whose time of day equals the
	// target. A tick that misses that second skips the firing.
	StrategyExact Strategy = iota
	// StrategyCatchUp fires on the first tick at or after the target,
	// measured forward from the time the timer was armed.
	StrategyCatchUp
)

func (s Strategy) String() string {
	switch s {
	case StrategyCatchUp:
		return "catchup"
	default:
		return "exact"
	}
}

// ParseStrategy parses "exact" or "catchup".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return StrategyExact, nil
	case "catchup", "catch-up":
		return StrategyCatchUp, nil
	}
	return StrategyExact, fmt.Errorf("unknown scheduler strategy %q", s)
}

// Timer holds an optional next fire time. The zero Timer is inactive.
type Timer struct {
	active bool
	armed  TimeOfDay // reference the timer was armed from
	next   TimeOfDay
}

// Reschedule arms the timer to fire period after reference.
func (t *Timer) Reschedule(reference TimeOfDay, period time.Duration) {
	t.ScheduleAt(reference, reference.Add(period))
}

// ScheduleAt arms the timer to fire at the given time of day. reference is
// the current time of day and bounds the catch-up window.
func (t *Timer) ScheduleAt(reference, at TimeOfDay) {
	t.active = true
	t.armed = reference
	t.next = at
}

// Clear disarms the timer.
func (t *Timer) Clear() {
	*t = Timer{}
}

// Active reports whether the timer is armed.
func (t Timer) Active() bool {
	return t.active
}

// Next returns the armed fire time.
func (t Timer) Next() (TimeOfDay, bool) {
	return t.next, t.active
}

// Due reports whether the timer fires at now under strategy s.
// Due does not disarm the timer; the owner reschedules or clears it.
func (t Timer) Due(now TimeOfDay, s Strategy) bool {
	if !t.active {
		return false
	}
	if s == StrategyCatchUp {
		return t.armed.Until(now) >= t.armed.Until(t.next)
	}
	return now == t.next
}

// nextPtr is used by snapshots.
func (t Timer) nextPtr() *TimeOfDay {
	if !t.active {
		return nil
	}
	n := t.next
	return &n
}
