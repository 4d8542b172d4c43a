//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

type realLine struct {
	line      *gpiocdev.Line
	activeLow bool
}

// RealWriter drives outputs on actual hardware using Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines map[OutputID]realLine
	order []OutputID
}

// NewRealWriter requests every pin as an output, initially logical OFF.
func NewRealWriter(chipName string, pins []Pin) (*RealWriter, error) {
	return openLines(chipName, pins, func(p Pin) gpiocdev.LineReqOption {
		return gpiocdev.AsOutput(RawValue(false, p.ActiveLow))
	})
}

// NewRealMonitor requests every pin leaving its direction and value as
// they are, so the current outputs can be read without disturbing them.
func NewRealMonitor(chipName string, pins []Pin) (*RealWriter, error) {
	return openLines(chipName, pins, func(Pin) gpiocdev.LineReqOption {
		return gpiocdev.AsIs
	})
}

func openLines(chipName string, pins []Pin, mode func(Pin) gpiocdev.LineReqOption) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("grow-controller"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	w := &RealWriter{chip: chip, lines: make(map[OutputID]realLine, len(pins))}
	for _, p := range pins {
		line, err := chip.RequestLine(p.Line, mode(p))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", p.ID, p.Line, err)
		}
		w.lines[p.ID] = realLine{line: line, activeLow: p.ActiveLow}
		w.order = append(w.order, p.ID)
	}
	return w, nil
}

// Set drives the output, inverting for active-low lines.
func (w *RealWriter) Set(id OutputID, on bool) error {
	l, ok := w.lines[id]
	if !ok {
		return &UnknownOutputError{ID: id}
	}
	if err := l.line.SetValue(RawValue(on, l.activeLow)); err != nil {
		return fmt.Errorf("set %s: %w", id, err)
	}
	return nil
}

// Get reads back the output's logical state.
func (w *RealWriter) Get(id OutputID) (bool, error) {
	l, ok := w.lines[id]
	if !ok {
		return false, &UnknownOutputError{ID: id}
	}
	raw, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", id, err)
	}
	return Logical(raw, l.activeLow), nil
}

// Close releases the lines and the chip. Output values are left as they are.
func (w *RealWriter) Close() error {
	var errs []error

	for _, id := range w.order {
		if err := w.lines[id].line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
