package sensor

// DefaultDHTRetries is how often a DHT read is retried on checksum or
// timing errors.
const DefaultDHTRetries = 10

// dhtRead returns temperature and humidity from a DHT22.
type dhtRead func() (float64, float64, error)

// DHT is a DHT22 on a single GPIO line. The two values come from the same
// transfer; Humidity returns the value captured by the preceding
// Temperature call when there is one.
type DHT struct {
	read    dhtRead
	pending *float64
}

// Temperature reads the sensor and returns °C.
func (d *DHT) Temperature() (float64, error) {
	t, h, err := d.read()
	if err != nil {
		d.pending = nil
		return 0, err
	}
	d.pending = &h
	return t, nil
}

// Humidity returns % RH.
func (d *DHT) Humidity() (float64, error) {
	if d.pending != nil {
		h := *d.pending
		d.pending = nil
		return h, nil
	}
	_, h, err := d.read()
	return h, err
}

// Close is a no-op; the driver holds no resources between reads.
func (d *DHT) Close() error {
	return nil
}
