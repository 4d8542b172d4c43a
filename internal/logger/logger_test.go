package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(WarnLevel, &buf)

	l.Infow("hidden")
	l.Warnw("shown", "output", "fan")
	l.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") {
		t.Errorf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, `"output": "fan"`) {
		t.Errorf("expected structured field, got %q", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("verbose", &buf)

	l.Debug("debug line")
	l.Info("info line")
	l.Sync()

	if strings.Contains(buf.String(), "debug line") {
		t.Error("debug should be filtered by the info fallback")
	}
	if !strings.Contains(buf.String(), "info line") {
		t.Error("expected info line")
	}
}

func TestValidLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("%q should be valid", lvl)
		}
	}
	if ValidLevel("trace") {
		t.Error("trace should be invalid")
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Errorw("nothing", "k", 1)
}
