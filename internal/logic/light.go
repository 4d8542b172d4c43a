package logic

// LightPhase names the transition the light is waiting for.
type LightPhase string

const (
	PendingOn  LightPhase = "PENDING_ON"
	PendingOff LightPhase = "PENDING_OFF"
)

// Light drives the redundant light relay pair on a day/night schedule.
type Light struct {
	on, off TimeOfDay
	phase   LightPhase
	timer   Timer
}

// NewLight creates a light cycling on at on and off at off.
func NewLight(on, off TimeOfDay) *Light {
	return &Light{on: on, off: off}
}

// Start decides the initial state from now and arms the first transition.
// It returns true if the lights should be on.
func (l *Light) Start(now TimeOfDay) bool {
	if l.daytime(now) {
		l.phase = PendingOff
		l.timer.ScheduleAt(now, l.off)
		return true
	}
	l.phase = PendingOn
	l.timer.ScheduleAt(now, l.on)
	return false
}

// daytime reports whether now lies in [on, off], wrapping past midnight
// when on is later than off.
func (l *Light) daytime(now TimeOfDay) bool {
	if l.on < l.off {
		return now >= l.on && now <= l.off
	}
	return now >= l.on || now <= l.off
}

// Tick returns the transition due at now, if any.
func (l *Light) Tick(now TimeOfDay, s Strategy) (EventType, bool) {
	if !l.timer.Due(now, s) {
		return "", false
	}
	if l.phase == PendingOn {
		l.phase = PendingOff
		l.timer.ScheduleAt(now, l.off)
		return EventLightsOn, true
	}
	l.phase = PendingOn
	l.timer.ScheduleAt(now, l.on)
	return EventLightsOff, true
}

// Phase returns the pending transition.
func (l *Light) Phase() LightPhase {
	return l.phase
}

// On reports whether the lights are currently on.
func (l *Light) On() bool {
	return l.phase == PendingOff
}

// Next returns the time of the pending transition.
func (l *Light) Next() (TimeOfDay, bool) {
	return l.timer.Next()
}
