package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient implements the parts of paho.Client the publisher uses.
type fakeClient struct {
	paho.Client
	open         bool
	sent         []sent
	err          error
	disconnected bool
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if c.err != nil {
		return &fakeToken{err: c.err}
	}
	c.sent = append(c.sent, sent{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	c := &fakeClient{open: true}
	p := newPublisher(c, logger.Nop())

	if err := p.Publish(logic.Event{Timestamp: ts, Type: logic.EventReading, Reading: &logic.Reading{Temperature: 20, Humidity: 90}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.sent))
	}
	if c.sent[0].topic != TopicReadings || c.sent[0].qos != 0 || c.sent[0].retained {
		t.Errorf("unexpected reading message: %+v", c.sent[0])
	}
	if c.sent[1].topic != TopicSystem || c.sent[1].qos != 1 || !c.sent[1].retained {
		t.Errorf("unexpected system message: %+v", c.sent[1])
	}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &fakeClient{open: false}
	p := newPublisher(c, logger.Nop())

	p.Publish(logic.Event{Timestamp: ts, Type: logic.EventMisterOn})
	p.Publish(logic.Event{Timestamp: ts, Type: logic.EventFanOn})

	if len(c.sent) != 0 {
		t.Fatalf("nothing should be sent while disconnected, got %d", len(c.sent))
	}
	if p.Buffered() != 2 {
		t.Errorf("expected 2 buffered, got %d", p.Buffered())
	}
	if p.IsConnected() {
		t.Error("expected disconnected")
	}

	c.open = true
	p.onConnect()

	if len(c.sent) != 2 {
		t.Fatalf("expected 2 replayed messages, got %d", len(c.sent))
	}
	if p.Buffered() != 0 {
		t.Errorf("expected empty buffer after replay, got %d", p.Buffered())
	}
}

func TestRealPublisherReplayFailureRebuffers(t *testing.T) {
	c := &fakeClient{open: false}
	p := newPublisher(c, logger.Nop())

	p.Publish(logic.Event{Timestamp: ts, Type: logic.EventFanOn})
	p.Publish(logic.Event{Timestamp: ts, Type: logic.EventFanOff})

	c.open = true
	c.err = errors.New("not authorized")
	p.onConnect()

	if p.Buffered() != 2 {
		t.Errorf("expected messages kept after failed replay, got %d", p.Buffered())
	}
}

func TestRealPublisherPublishError(t *testing.T) {
	c := &fakeClient{open: true, err: errors.New("packet too large")}
	p := newPublisher(c, logger.Nop())

	if err := p.Publish(logic.Event{Timestamp: ts, Type: logic.EventFanOn}); err == nil {
		t.Error("expected error")
	}
}

func TestRealPublisherClose(t *testing.T) {
	c := &fakeClient{}
	p := newPublisher(c, logger.Nop())
	p.Close()
	if !c.disconnected {
		t.Error("expected disconnect")
	}
}
