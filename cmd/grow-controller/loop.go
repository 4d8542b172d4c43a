package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/grow-controller/internal/datalog"
	"github.com/sweeney/grow-controller/internal/gpio"
	"github.com/sweeney/grow-controller/internal/logger"
	"github.com/sweeney/grow-controller/internal/logic"
	"github.com/sweeney/grow-controller/internal/metrics"
	"github.com/sweeney/grow-controller/internal/mqtt"
	"github.com/sweeney/grow-controller/internal/notify"
	"github.com/sweeney/grow-controller/internal/status"
)

// runner drives the controller and carries out what it decides. The
// controller is pure; every side effect lives here.
type runner struct {
	ctrl    *logic.Controller
	bank    *gpio.Bank
	sink    datalog.Sink
	console *notify.Console
	tracker *status.Tracker
	metrics *metrics.Metrics
	log     *logger.Logger

	// pub may be nil when no broker is configured. It must not block; the
	// broker connection is served by mqtt.Queued.
	pub        mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus

	heartbeat time.Duration // 0 disables
	network   func() *status.NetworkInfo
	now       func() time.Time

	lastHeartbeat time.Time
}

// start applies the initial light decision and arms every timer.
func (r *runner) start(ctx context.Context, initial logic.Reading) error {
	t := r.now()
	r.lastHeartbeat = t

	for _, ev := range r.ctrl.Start(t, initial) {
		if err := r.handle(ctx, ev); err != nil {
			return err
		}
	}
	r.refresh()

	r.notify("Entering Program Loop")
	r.publishSystem("STARTUP", "", t, true)
	return nil
}

// runLoop evaluates the controller on every tick until a signal arrives or
// ctx is cancelled. A nil tick channel busy-polls the clock.
//
// Fan and mister are switched off on the way out, whatever the cause.
func (r *runner) runLoop(ctx context.Context, tick <-chan time.Time, sig <-chan os.Signal) error {
	if tick == nil {
		busy := make(chan time.Time)
		close(busy)
		tick = busy
	}

	for {
		select {
		case <-ctx.Done():
			return r.stop("CANCELLED", nil)
		case s := <-sig:
			r.log.Infow("Received signal, shutting down", "signal", s)
			return r.stop(signalName(s), nil)
		case <-tick:
			if err := r.step(ctx); err != nil {
				return r.stop("ERROR", err)
			}
		}
	}
}

// step runs one controller tick.
func (r *runner) step(ctx context.Context) error {
	t := r.now()
	events, tickErr := r.ctrl.Tick(t)

	for _, ev := range events {
		if err := r.handle(ctx, ev); err != nil {
			return err
		}
	}
	if len(events) > 0 {
		r.refresh()
	}
	if tickErr != nil {
		return tickErr
	}

	r.checkHeartbeat(t)
	return nil
}

// handle applies one event: outputs first, then the operator console, the
// log sinks, MQTT and metrics. Output and primary log failures are fatal.
// Secondary sinks and MQTT only enqueue here.
func (r *runner) handle(ctx context.Context, ev logic.Event) error {
	if err := r.bank.Apply(ev); err != nil {
		return fmt.Errorf("apply %s: %w", ev.Type, err)
	}

	if err := r.console.Event(ev); err != nil {
		r.log.Warnw("Console write failed", "event", ev.Type, "error", err)
	}

	switch ev.Type {
	case logic.EventSampleFailed:
		r.log.Errorw("Sensor sample failed", "error", ev.Err)
	default:
		r.log.Debugw("Event", "type", ev.Type, "reason", ev.Reason)
	}

	if err := r.sink.Write(ctx, ev); err != nil {
		return fmt.Errorf("log %s: %w", ev.Type, err)
	}

	if r.pub != nil {
		if err := r.pub.Publish(ev); err != nil {
			r.log.Warnw("MQTT publish failed", "event", ev.Type, "error", err)
			r.metrics.SinkError("mqtt", err)
		}
	}

	r.metrics.Observe(ev)
	return nil
}

// refresh copies controller and connection state into the tracker.
func (r *runner) refresh() {
	r.tracker.Update(r.ctrl.Snapshot())
	if r.mqttStatus != nil {
		r.tracker.SetMQTTConnected(r.mqttStatus.IsConnected())
		if bs, ok := r.mqttStatus.(mqtt.BufferStatus); ok {
			r.tracker.SetMQTTBuffered(bs.Buffered())
		}
	}
}

func (r *runner) checkHeartbeat(t time.Time) {
	if r.heartbeat <= 0 || t.Sub(r.lastHeartbeat) < r.heartbeat {
		return
	}
	r.lastHeartbeat = t

	if r.network != nil {
		if n := r.network(); n != nil {
			r.tracker.SetNetwork(n)
		}
	}
	r.refresh()

	c := r.ctrl.Snapshot().Counts
	r.log.Infow("Heartbeat",
		"lights_on", c.LightsOn, "fan_on", c.FanOn, "mister_on", c.MisterOn,
		"readings", c.Readings, "sample_failed", c.SampleFailed)
	r.publishSystem("HEARTBEAT", "", t, false)
}

// stop switches the fan and mister off and announces the shutdown. The
// lights keep their state. cause, if not nil, is returned with any
// shutdown failure joined to it.
func (r *runner) stop(reason string, cause error) error {
	if cause != nil {
		r.log.Errorw("Control loop failed", "error", cause)
	}

	err := r.bank.Shutdown()
	if err != nil {
		r.log.Errorw("Failed to switch outputs off", "error", err)
		err = fmt.Errorf("shutdown outputs: %w", err)
	}

	r.refresh()
	r.notify(fmt.Sprintf("Shutting down (%s)", reason))
	r.publishSystem("SHUTDOWN", reason, r.now(), true)

	return errors.Join(cause, err)
}

func (r *runner) notify(msg string) {
	if err := r.console.Notify(msg); err != nil {
		r.log.Warnw("Console write failed", "error", err)
	}
}

func (r *runner) publishSystem(event, reason string, t time.Time, retained bool) {
	if r.pub == nil {
		return
	}
	snap := r.tracker.Snapshot()
	se := mqtt.SystemEvent{
		Timestamp:  t,
		Event:      event,
		Reason:     reason,
		Retained:   retained,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := r.pub.PublishSystem(se); err != nil {
		r.log.Warnw("Failed to publish system event", "event", event, "error", err)
		r.metrics.SinkError("mqtt", err)
		return
	}
	r.log.Debugw("Published system event", "event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
