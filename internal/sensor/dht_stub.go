//go:build !linux || !cgo

package sensor

import "errors"

// NewDHT returns an error without Linux and cgo.
func NewDHT(pin, retries int) (*DHT, error) {
	return nil, errors.New("dht: not supported on this platform (requires Linux and cgo)")
}
