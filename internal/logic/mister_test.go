package logic

import (
	"testing"
	"time"
)

func newTestMister() *Mister {
	return NewMister(12*time.Minute, 3*time.Minute, 3*time.Minute, 90)
}

func TestMisterStartsBelowThreshold(t *testing.T) {
	m := newTestMister()
	m.Start(NewTimeOfDay(8, 0, 0), time.Minute)
	now := NewTimeOfDay(8, 1, 0)

	res, ok := m.TickCheck(now, StrategyExact, 85)
	if !ok {
		t.Fatal("humidity check did not run")
	}
	if !res.Started {
		t.Fatal("expected mister to start at 85% with threshold 90%")
	}
	if want := NewTimeOfDay(8, 4, 0); res.Until != want {
		t.Errorf("expected off at %s, got %s", want, res.Until)
	}
	if res.Fan == nil {
		t.Fatal("expected a fan start request")
	}
	if want := NewTimeOfDay(8, 4, 0); res.Fan.At != want {
		t.Errorf("expected fan start at %s, got %s", want, res.Fan.At)
	}
	if res.Fan.Reason != ReasonMistFlush {
		t.Errorf("expected %s, got %s", ReasonMistFlush, res.Fan.Reason)
	}
	if !m.Running() {
		t.Error("expected mister running")
	}

	next, _ := m.check.Next()
	if want := NewTimeOfDay(8, 13, 0); next != want {
		t.Errorf("expected next check at %s, got %s", want, next)
	}
}

func TestMisterIgnoresHumidAir(t *testing.T) {
	for _, h := range []float64{90, 90.1, 99} {
		m := newTestMister()
		m.Start(NewTimeOfDay(8, 0, 0), time.Minute)

		res, ok := m.TickCheck(NewTimeOfDay(8, 1, 0), StrategyExact, h)
		if !ok {
			t.Fatalf("%v%%: humidity check did not run", h)
		}
		if res.Started || res.Fan != nil {
			t.Errorf("%v%%: mister should not start at or above threshold", h)
		}
		if m.Running() {
			t.Errorf("%v%%: mister running", h)
		}
	}
}

func TestMisterNotStoppedEarlyByHumidCheck(t *testing.T) {
	m := NewMister(2*time.Minute, 5*time.Minute, time.Minute, 90)
	start := NewTimeOfDay(8, 0, 0)
	m.Start(start, time.Minute)

	if res, _ := m.TickCheck(NewTimeOfDay(8, 1, 0), StrategyExact, 50); !res.Started {
		t.Fatal("expected mister to start")
	}
	if res, ok := m.TickCheck(NewTimeOfDay(8, 3, 0), StrategyExact, 95); !ok || res.Started {
		t.Fatalf("expected a check without start, got %+v (ok=%v)", res, ok)
	}
	if !m.Running() {
		t.Error("humid reading must not stop a running mister")
	}
	if !m.TickStop(NewTimeOfDay(8, 6, 0), StrategyExact) {
		t.Error("mister did not stop at its planned time")
	}
}

func TestMisterOnlyStartsFromCheck(t *testing.T) {
	m := newTestMister()
	m.Start(NewTimeOfDay(8, 0, 0), time.Minute)

	for i := 0; i < 60; i++ {
		now := NewTimeOfDay(8, 0, i)
		if m.TickStop(now, StrategyExact) {
			t.Fatalf("stop fired at %s with nothing armed", now)
		}
		if _, ok := m.TickCheck(now, StrategyExact, 10); ok {
			t.Fatalf("check ran before it was due at %s", now)
		}
	}
	if m.Running() {
		t.Error("mister started without a humidity check")
	}
}
