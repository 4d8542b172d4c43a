package sensor

import (
	"errors"
	"fmt"
	"time"
)

// SHT31-D defaults.
const (
	DefaultI2CBus  = 1
	DefaultI2CAddr = 0x44
)

// Single shot, high repeatability, no clock stretching.
var sht31Measure = []byte{0x24, 0x00}

// sht31Delay covers the worst case high repeatability conversion time.
const sht31Delay = 16 * time.Millisecond

// ErrCRC is returned when a measurement word fails its checksum.
var ErrCRC = errors.New("sht31: crc mismatch")

// i2cDevice is the subset of an I2C connection the SHT31 needs.
type i2cDevice interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
	Close() error
}

// SHT31 is a Sensirion SHT31-D on an I2C bus. A measurement frame carries
// both values; Humidity returns the one captured by the preceding
// Temperature call when there is one.
type SHT31 struct {
	dev     i2cDevice
	sleep   func(time.Duration)
	pending *float64
}

func newSHT31(dev i2cDevice) *SHT31 {
	return &SHT31{dev: dev, sleep: time.Sleep}
}

// Temperature measures and returns °C.
func (s *SHT31) Temperature() (float64, error) {
	t, h, err := s.measure()
	if err != nil {
		s.pending = nil
		return 0, err
	}
	s.pending = &h
	return t, nil
}

// Humidity returns % RH.
func (s *SHT31) Humidity() (float64, error) {
	if s.pending != nil {
		h := *s.pending
		s.pending = nil
		return h, nil
	}
	_, h, err := s.measure()
	return h, err
}

// Close releases the bus.
func (s *SHT31) Close() error {
	return s.dev.Close()
}

func (s *SHT31) measure() (float64, float64, error) {
	if _, err := s.dev.WriteBytes(sht31Measure); err != nil {
		return 0, 0, fmt.Errorf("sht31 measure: %w", err)
	}
	s.sleep(sht31Delay)

	buf := make([]byte, 6)
	n, err := s.dev.ReadBytes(buf)
	if err != nil {
		return 0, 0, fmt.Errorf("sht31 read: %w", err)
	}
	if n != len(buf) {
		return 0, 0, fmt.Errorf("sht31 read: short read of %d bytes", n)
	}
	return decodeSHT31(buf)
}

// decodeSHT31 converts a 6-byte measurement frame: temperature word, CRC,
// humidity word, CRC.
func decodeSHT31(buf []byte) (float64, float64, error) {
	if len(buf) != 6 {
		return 0, 0, fmt.Errorf("sht31: frame length %d", len(buf))
	}
	if crc8(buf[0:2]) != buf[2] {
		return 0, 0, fmt.Errorf("temperature: %w", ErrCRC)
	}
	if crc8(buf[3:5]) != buf[5] {
		return 0, 0, fmt.Errorf("humidity: %w", ErrCRC)
	}

	rawT := float64(uint16(buf[0])<<8 | uint16(buf[1]))
	rawH := float64(uint16(buf[3])<<8 | uint16(buf[4]))

	temp := -45 + 175*rawT/65535
	hum := 100 * rawH / 65535
	return temp, hum, nil
}

// crc8 uses polynomial 0x31 with initial value 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
