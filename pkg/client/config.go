package client

import "time"

type Config struct {
	// Server updates per second, used to advance the predicted generation
	// and to scale interpolation.
	TickRate int
	// Frames per second of the headless loop.
	FrameRate            int
	PositionTolerance    float32
	OrientationTolerance float32
	// Snapshots kept per remote entity.
	HistorySize int
}

const (
	DefaultTickRate    = 32
	DefaultFrameRate   = 60
	DefaultHistorySize = 4
)

func (c Config) TickDuration() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

func (c Config) FrameDuration() time.Duration {
	rate := c.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return time.Second / time.Duration(rate)
}

func (c Config) Tolerance() Tolerance {
	tolerance := DefaultTolerance
	if c.PositionTolerance > 0 {
		tolerance.Position = c.PositionTolerance
	}
	if c.OrientationTolerance > 0 {
		tolerance.Orientation = c.OrientationTolerance
	}
	return tolerance
}

func (c Config) historySize() int {
	if c.HistorySize <= 0 {
		return DefaultHistorySize
	}
	return c.HistorySize
}
