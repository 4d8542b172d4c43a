package logic

import (
	"testing"
	"time"
)

func TestZeroTimerNeverFires(t *testing.T) {
	var tm Timer
	for _, s := range []Strategy{StrategyExact, StrategyCatchUp} {
		for sec := 0; sec < 86400; sec += 3600 {
			if tm.Due(NewTimeOfDay(0, 0, sec), s) {
				t.Fatalf("%s: inactive timer fired at %ds", s, sec)
			}
		}
	}
	if tm.Active() {
		t.Error("zero timer should be inactive")
	}
}

func TestTimerExactMatchOnly(t *testing.T) {
	var tm Timer
	now := NewTimeOfDay(12, 0, 0)
	tm.Reschedule(now, 2*time.Minute)

	next, ok := tm.Next()
	if !ok || next != NewTimeOfDay(12, 2, 0) {
		t.Fatalf("expected next 12:02:00, got %s (active=%v)", next, ok)
	}

	if tm.Due(NewTimeOfDay(12, 1, 59), StrategyExact) {
		t.Error("fired before target")
	}
	if !tm.Due(NewTimeOfDay(12, 2, 0), StrategyExact) {
		t.Error("did not fire at target")
	}
	if tm.Due(NewTimeOfDay(12, 2, 1), StrategyExact) {
		t.Error("exact strategy fired after the target second was missed")
	}
}

func TestTimerCatchUpFiresAfterMissedSecond(t *testing.T) {
	var tm Timer
	now := NewTimeOfDay(12, 0, 0)
	tm.Reschedule(now, 2*time.Minute)

	if tm.Due(NewTimeOfDay(12, 1, 59), StrategyCatchUp) {
		t.Error("fired before target")
	}
	if !tm.Due(NewTimeOfDay(12, 2, 0), StrategyCatchUp) {
		t.Error("did not fire at target")
	}
	if !tm.Due(NewTimeOfDay(12, 2, 7), StrategyCatchUp) {
		t.Error("catch-up strategy did not fire after a stall")
	}
}

func TestTimerCatchUpAcrossMidnight(t *testing.T) {
	var tm Timer
	tm.Reschedule(NewTimeOfDay(23, 59, 0), 2*time.Minute)

	if tm.Due(NewTimeOfDay(23, 59, 30), StrategyCatchUp) {
		t.Error("fired before midnight")
	}
	if tm.Due(NewTimeOfDay(0, 0, 59), StrategyCatchUp) {
		t.Error("fired before target after midnight")
	}
	if !tm.Due(NewTimeOfDay(0, 1, 5), StrategyCatchUp) {
		t.Error("did not fire after target past midnight")
	}
}

func TestTimerClear(t *testing.T) {
	var tm Timer
	now := NewTimeOfDay(8, 0, 0)
	tm.Reschedule(now, time.Second)
	tm.Clear()

	if tm.Active() {
		t.Error("cleared timer should be inactive")
	}
	if tm.Due(NewTimeOfDay(8, 0, 1), StrategyExact) {
		t.Error("cleared timer fired")
	}
}

func TestTimerFiresOncePerPeriodWithOneSecondTicks(t *testing.T) {
	for _, s := range []Strategy{StrategyExact, StrategyCatchUp} {
		t.Run(s.String(), func(t *testing.T) {
			var tm Timer
			start := NewTimeOfDay(22, 0, 0)
			period := 7 * time.Minute
			tm.Reschedule(start, period)

			fires := 0
			for i := 1; i <= 4*3600; i++ {
				now := start.Add(time.Duration(i) * time.Second)
				if tm.Due(now, s) {
					fires++
					if start.Until(now) != time.Duration(fires)*period {
						t.Fatalf("fire %d at %s, expected every %v", fires, now, period)
					}
					tm.Reschedule(now, period)
				}
			}
			if want := int(4 * time.Hour / period); fires != want {
				t.Errorf("expected %d fires, got %d", want, fires)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"exact", StrategyExact, false},
		{"", StrategyExact, false},
		{"CatchUp", StrategyCatchUp, false},
		{"catch-up", StrategyCatchUp, false},
		{"sometimes", StrategyExact, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}
