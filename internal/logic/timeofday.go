package logic

import (
	"fmt"
	"time"
)

// Day is the length of the time-of-day range.
const Day = 24 * time.Hour

// TimeOfDay is a wall-clock time with the date discarded, in [0, 24h),
// at one second resolution.
type TimeOfDay time.Duration

// Clock returns the current wall time.
type Clock func() time.Time

// FromTime returns the time of day of t, truncated to whole seconds.
func FromTime(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// NewTimeOfDay builds a TimeOfDay from its components, wrapping at 24h.
func NewTimeOfDay(hour, minute, sec int) TimeOfDay {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(sec)*time.Second
	return wrap(d)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q (want HH:MM or HH:MM:SS)", s)
}

// Add returns t advanced by d, wrapped into [0, 24h). Sub-second parts of d
// are discarded.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return wrap(time.Duration(t) + d.Truncate(time.Second))
}

// Until returns the forward distance from t to u, in [0, 24h).
func (t TimeOfDay) Until(u TimeOfDay) time.Duration {
	return time.Duration(wrap(time.Duration(u) - time.Duration(t)))
}

// Duration returns t as the offset since midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	v, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func wrap(d time.Duration) TimeOfDay {
	d %= Day
	if d < 0 {
		d += Day
	}
	return TimeOfDay(d)
}
