package datalog

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sweeney/grow-controller/internal/logic"
)

// Measurement names.
const (
	MeasurementEnvironment = "environment"
	MeasurementActuator    = "actuator"
)

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx writes readings and actuator transitions as points.
type Influx struct {
	client influxdb2.Client
	w      pointWriter
	host   string
}

// InfluxConfig holds connection settings.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Host   string // tag value identifying this controller
}

// NewInflux connects to InfluxDB and checks its health.
func NewInflux(ctx context.Context, cfg InfluxConfig) (*Influx, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("influxdb health check failed: %s", msg)
	}

	return &Influx{
		client: client,
		w:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		host:   cfg.Host,
	}, nil
}

// Write stores READING and actuator events.
func (i *Influx) Write(ctx context.Context, ev logic.Event) error {
	p := i.point(ev)
	if p == nil {
		return nil
	}
	if err := i.w.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("write %s point: %w", ev.Type, err)
	}
	return nil
}

func (i *Influx) point(ev logic.Event) *write.Point {
	tags := map[string]string{"host": i.host}

	if ev.Type == logic.EventReading && ev.Reading != nil {
		return influxdb2.NewPoint(MeasurementEnvironment, tags, map[string]interface{}{
			"temperature": ev.Reading.Temperature,
			"humidity":    ev.Reading.Humidity,
		}, ev.Timestamp)
	}

	act, on, ok := ev.Actuation()
	if !ok {
		return nil
	}
	tags["actuator"] = string(act)
	if ev.Reason != "" {
		tags["reason"] = string(ev.Reason)
	}
	state := 0
	if on {
		state = 1
	}
	return influxdb2.NewPoint(MeasurementActuator, tags, map[string]interface{}{
		"state": state,
	}, ev.Timestamp)
}

// Close releases the client.
func (i *Influx) Close() error {
	if i.client != nil {
		i.client.Close()
	}
	return nil
}
