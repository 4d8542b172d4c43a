package logic

import (
	"testing"
	"time"
)

func TestFromTimeDiscardsDateAndSubSecond(t *testing.T) {
	tm := time.Date(2026, 3, 14, 19, 30, 5, 999_000_000, time.UTC)
	got := FromTime(tm)
	want := NewTimeOfDay(19, 30, 5)
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"07:30:00", NewTimeOfDay(7, 30, 0), false},
		{"19:30", NewTimeOfDay(19, 30, 0), false},
		{"00:00:00", 0, false},
		{"23:59:59", NewTimeOfDay(23, 59, 59), false},
		{"24:00:00", 0, true},
		{"7.30", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTimeOfDayAddWrapsAtMidnight(t *testing.T) {
	start := NewTimeOfDay(23, 55, 0)

	got := start.Add(20 * time.Minute)
	if want := NewTimeOfDay(0, 15, 0); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	got = start.Add(-24 * time.Hour)
	if got != start {
		t.Errorf("expected %s after subtracting a day, got %s", start, got)
	}

	got = start.Add(1500 * time.Millisecond)
	if want := NewTimeOfDay(23, 55, 1); got != want {
		t.Errorf("expected sub-second part dropped: %s, got %s", want, got)
	}
}

func TestTimeOfDayUntil(t *testing.T) {
	a := NewTimeOfDay(23, 0, 0)
	b := NewTimeOfDay(1, 0, 0)

	if got := a.Until(b); got != 2*time.Hour {
		t.Errorf("expected 2h forward across midnight, got %v", got)
	}
	if got := b.Until(a); got != 22*time.Hour {
		t.Errorf("expected 22h, got %v", got)
	}
	if got := a.Until(a); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestTimeOfDayTextRoundTrip(t *testing.T) {
	want := NewTimeOfDay(7, 30, 15)
	text, err := want.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(text) != "07:30:15" {
		t.Errorf("expected 07:30:15, got %s", text)
	}

	var got TimeOfDay
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
