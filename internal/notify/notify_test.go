package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/sweeney/grow-controller/internal/logic"
)

func fixedClock() time.Time {
	return time.Date(2019, 12, 18, 18, 24, 33, 0, time.Local)
}

func TestNotifyFormat(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, fixedClock)

	if err := c.Notify("Entering Program Loop"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "2019-12-18 18:24:33 Entering Program Loop\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestEventStampsFirstLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, fixedClock)

	ev := logic.Event{
		Timestamp: time.Date(2024, 5, 1, 8, 0, 2, 0, time.Local),
		Type:      logic.EventReading,
		Reading:   &logic.Reading{Temperature: 21.34, Humidity: 88.06},
	}
	if err := c.Event(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "2024-05-01 08:00:02 Logging sensor data\n" +
		"Temperature: 21.3 C\n" +
		"Humidity: 88.1 %\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestEventWithoutTimestampUsesClock(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, fixedClock)

	c.Event(logic.Event{Type: logic.EventMisterOff})

	expected := "2019-12-18 18:24:33 Mister OFF\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
