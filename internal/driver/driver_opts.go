package driver

import "time"

type DriverOpt func(*Driver)

// WithTickLength sets the time between ticks. Non-positive lengths are
// ignored and the default is kept.
func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		if tickLength > 0 {
			d.tickLength = tickLength
		}
	}
}
