//go:build !linux

package sensor

import "errors"

// NewSHT31 returns an error on non-Linux platforms.
func NewSHT31(bus int, addr uint8) (*SHT31, error) {
	return nil, errors.New("sht31: not supported on this platform (requires Linux)")
}
