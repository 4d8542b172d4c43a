package datalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
)

// Queue sizing for secondary sinks.
const (
	DefaultQueueSize    = 128
	DefaultWriteTimeout = 10 * time.Second
)

var (
	// ErrQueueFull is returned when an event is dropped because the writer
	// has fallen behind.
	ErrQueueFull = errors.New("queue full")

	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("sink closed")
)

// Async hands events to a sink on its own goroutine, so a slow database or
// network never holds up the caller. Write never blocks; when the queue is
// full the event is dropped and ErrQueueFull returned.
type Async struct {
	name    string
	sink    Sink
	timeout time.Duration
	log     *logger.Logger
	onError func(name string, err error)

	mu     sync.Mutex
	closed bool
	queue  chan logic.Event
	done   chan struct{}
}

// NewAsync starts a writer for sink. onError, if not nil, is called from
// the writer goroutine for every failed write.
func NewAsync(name string, sink Sink, size int, timeout time.Duration, log *logger.Logger, onError func(name string, err error)) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	a := &Async{
		name:    name,
		sink:    sink,
		timeout: timeout,
		log:     log,
		onError: onError,
		queue:   make(chan logic.Event, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.sink.Write(ctx, ev)
		cancel()
		if err != nil {
			a.log.Warnw("Sink write failed", "sink", a.name, "event", ev.Type, "error", err)
			if a.onError != nil {
				a.onError(a.name, err)
			}
		}
	}
}

// Write queues ev.
func (a *Async) Write(_ context.Context, ev logic.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("%s: %w", a.name, ErrClosed)
	}
	select {
	case a.queue <- ev:
		return nil
	default:
		return fmt.Errorf("%s: %w", a.name, ErrQueueFull)
	}
}

// Close stops accepting events, waits up to one write timeout for the queue
// to drain and closes the sink.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(a.timeout):
		a.log.Warnw("Sink did not drain before close", "sink", a.name, "pending", len(a.queue))
	}
	return a.sink.Close()
}
