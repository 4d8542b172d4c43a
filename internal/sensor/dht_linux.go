//go:build linux && cgo

package sensor

import (
	"fmt"

	dht "github.com/d2r2/go-dht"
	logger "github.com/d2r2/go-logger"
)

func init() {
	logger.ChangePackageLogLevel("dht", logger.InfoLevel)
}

// NewDHT creates a DHT22 reader on the BCM pin.
func NewDHT(pin, retries int) (*DHT, error) {
	if pin < 0 {
		return nil, fmt.Errorf("dht: invalid pin %d", pin)
	}
	return &DHT{read: func() (float64, float64, error) {
		t, h, _, err := dht.ReadDHTxxWithRetry(dht.DHT22, pin, false, retries)
		if err != nil {
			return 0, 0, fmt.Errorf("dht22 pin %d: %w", pin, err)
		}
		return float64(t), float64(h), nil
	}}, nil
}
