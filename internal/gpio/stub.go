//go:build !linux

package gpio

import "errors"

// RealWriter is not available on non-Linux platforms.
type RealWriter struct{}

// NewRealWriter returns an error on non-Linux platforms.
func NewRealWriter(chipName string, pins []Pin) (*RealWriter, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// NewRealMonitor returns an error on non-Linux platforms.
func NewRealMonitor(chipName string, pins []Pin) (*RealWriter, error) {
	return NewRealWriter(chipName, pins)
}

// Set is not implemented on non-Linux platforms.
func (w *RealWriter) Set(id OutputID, on bool) error {
	return errors.New("gpio: not supported")
}

// Get is not implemented on non-Linux platforms.
func (w *RealWriter) Get(id OutputID) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *RealWriter) Close() error {
	return nil
}
