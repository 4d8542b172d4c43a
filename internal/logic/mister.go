package logic

import "time"

// Mister raises humidity. It only starts from a humidity check that finds
// the chamber drier than the threshold.
type Mister struct {
	checkInterval time.Duration
	period        time.Duration
	fanWait       time.Duration
	threshold     float64

	running bool
	check   Timer
	stop    Timer
}

// NewMister creates a mister checked every checkInterval that runs for
// period and asks the fan to start fanWait after it turns on.
func NewMister(checkInterval, period, fanWait time.Duration, threshold float64) *Mister {
	return &Mister{
		checkInterval: checkInterval,
		period:        period,
		fanWait:       fanWait,
		threshold:     threshold,
	}
}

// Start arms the first humidity check after delay.
func (m *Mister) Start(now TimeOfDay, delay time.Duration) {
	m.check.Reschedule(now, delay)
}

// CheckResult is the outcome of a humidity check.
type CheckResult struct {
	Started bool
	Until   TimeOfDay
	Fan     *FanStartRequest
}

// TickCheck runs the humidity check if due. humidity is the most recent
// logged average. A reading at or above the threshold leaves the mister as
// it is, even if a previous cycle is still running.
func (m *Mister) TickCheck(now TimeOfDay, s Strategy, humidity float64) (CheckResult, bool) {
	if !m.check.Due(now, s) {
		return CheckResult{}, false
	}
	m.check.Reschedule(now, m.checkInterval)

	if humidity >= m.threshold {
		return CheckResult{}, true
	}

	m.running = true
	m.stop.Reschedule(now, m.period)
	until, _ := m.stop.Next()
	return CheckResult{
		Started: true,
		Until:   until,
		Fan:     &FanStartRequest{At: now.Add(m.fanWait), Reason: ReasonMistFlush},
	}, true
}

// TickStop turns the mister off if its stop timer is due.
func (m *Mister) TickStop(now TimeOfDay, s Strategy) bool {
	if !m.stop.Due(now, s) {
		return false
	}
	m.stop.Clear()
	m.running = false
	return true
}

// Running reports whether the mister is on.
func (m *Mister) Running() bool {
	return m.running
}
