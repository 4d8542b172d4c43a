package mqtt

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
)

// QueueSize is the default depth of a Queued publisher.
const QueueSize = 64

var (
	// ErrQueueFull is returned when a message is dropped because the
	// publisher has fallen behind.
	ErrQueueFull = errors.New("mqtt: publish queue full")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("mqtt: publisher closed")
)

type queuedMsg struct {
	event  *logic.Event
	system *SystemEvent
}

// Queued publishes through another Publisher from its own goroutine.
// Publish and PublishSystem only enqueue and never wait on the broker.
type Queued struct {
	inner   Publisher
	log     *logger.Logger
	onError func(err error)

	mu     sync.Mutex
	closed bool
	queue  chan queuedMsg
	done   chan struct{}
}

// NewQueued starts a publishing goroutine for inner. onError, if not nil,
// is called from that goroutine for every failed publish.
func NewQueued(inner Publisher, size int, log *logger.Logger, onError func(err error)) *Queued {
	if size <= 0 {
		size = QueueSize
	}
	q := &Queued{
		inner:   inner,
		log:     log,
		onError: onError,
		queue:   make(chan queuedMsg, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queued) run() {
	defer close(q.done)
	for m := range q.queue {
		var err error
		if m.system != nil {
			err = q.inner.PublishSystem(*m.system)
		} else {
			err = q.inner.Publish(*m.event)
		}
		if err != nil {
			q.log.Warnw("MQTT publish failed", "error", err)
			if q.onError != nil {
				q.onError(err)
			}
		}
	}
}

func (q *Queued) enqueue(m queuedMsg) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.queue <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Publish queues a controller event.
func (q *Queued) Publish(event logic.Event) error {
	return q.enqueue(queuedMsg{event: &event})
}

// PublishSystem queues a system event.
func (q *Queued) PublishSystem(event SystemEvent) error {
	return q.enqueue(queuedMsg{system: &event})
}

// IsConnected reports the inner publisher's connection state, or false
// when it cannot tell.
func (q *Queued) IsConnected() bool {
	if cs, ok := q.inner.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Buffered returns the queued messages plus any the inner publisher holds
// for a reconnect.
func (q *Queued) Buffered() int {
	n := len(q.queue)
	if bs, ok := q.inner.(BufferStatus); ok {
		n += bs.Buffered()
	}
	return n
}

// Close stops accepting messages, gives the queue two publish timeouts to
// drain and closes the inner publisher.
func (q *Queued) Close() error {
	return q.closeWithin(2 * publishTimeout)
}

func (q *Queued) closeWithin(drain time.Duration) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
	case <-time.After(drain):
		q.log.Warnw("MQTT queue did not drain before close", "pending", len(q.queue))
	}
	return q.inner.Close()
}
