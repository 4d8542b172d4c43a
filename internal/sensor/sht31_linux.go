//go:build linux

package sensor

import (
	"fmt"

	i2c "github.com/d2r2/go-i2c"
	logger "github.com/d2r2/go-logger"
)

func init() {
	// go-i2c logs every transfer at debug level by default.
	logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
}

// NewSHT31 opens the sensor at addr on /dev/i2c-<bus>.
func NewSHT31(bus int, addr uint8) (*SHT31, error) {
	dev, err := i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c-%d addr 0x%02x: %w", bus, addr, err)
	}
	return newSHT31(dev), nil
}
