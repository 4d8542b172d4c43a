// Package datalog records controller readings and events.
package datalog

import (
	"context"
	"fmt"

	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
)

// TimestampLayout is the date/time format of every sink.
const TimestampLayout = "2006-01-02 15:04:05"

// Sink receives controller events. Sinks pick the events they store.
type Sink interface {
	Write(ctx context.Context, ev logic.Event) error
	Close() error
}

// Multi fans events out to a primary sink and any number of secondary
// sinks. Only primary failures are returned; secondary failures are logged
// and counted.
type Multi struct {
	primary   Sink
	secondary []named
	log       *logger.Logger

	// OnSecondaryError, if set, is called for every failed secondary write.
	OnSecondaryError func(name string, err error)
}

type named struct {
	name string
	sink Sink
}

// NewMulti creates a Multi around primary.
func NewMulti(primary Sink, log *logger.Logger) *Multi {
	return &Multi{primary: primary, log: log}
}

// Add registers a secondary sink.
func (m *Multi) Add(name string, s Sink) {
	m.secondary = append(m.secondary, named{name: name, sink: s})
}

// Write sends ev to every sink.
func (m *Multi) Write(ctx context.Context, ev logic.Event) error {
	for _, s := range m.secondary {
		if err := s.sink.Write(ctx, ev); err != nil {
			m.log.Warnw("Secondary sink write failed", "sink", s.name, "event", ev.Type, "error", err)
			if m.OnSecondaryError != nil {
				m.OnSecondaryError(s.name, err)
			}
		}
	}
	if m.primary == nil {
		return nil
	}
	if err := m.primary.Write(ctx, ev); err != nil {
		return fmt.Errorf("primary sink: %w", err)
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m *Multi) Close() error {
	var first error
	for _, s := range m.secondary {
		if err := s.sink.Close(); err != nil {
			m.log.Warnw("Closing sink failed", "sink", s.name, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	if m.primary != nil {
		if err := m.primary.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
