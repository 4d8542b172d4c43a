// Package notify writes operator notifications to a console.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sweeney/grow-controller/internal/logic"
)

// Console writes timestamped lines, one per message.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a notifier on w, or stdout when w is nil.
func NewConsole(w io.Writer, now func() time.Time) *Console {
	if w == nil {
		w = os.Stdout
	}
	if now == nil {
		now = time.Now
	}
	return &Console{w: w, now: now}
}

// Notify writes "YYYY-MM-DD HH:MM:SS msg".
func (c *Console) Notify(msg string) error {
	return c.line(c.now(), msg)
}

// Event writes the event's lines stamped with the event's own time. Only
// the first line carries the timestamp; detail lines follow unstamped.
func (c *Console) Event(ev logic.Event) error {
	lines := ev.Lines()
	if len(lines) == 0 {
		return nil
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	if err := c.line(ts, lines[0]); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range lines[1:] {
		if _, err := fmt.Fprintln(c.w, l); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) line(ts time.Time, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s\n", ts.Format("2006-01-02 15:04:05"), msg)
	return err
}
