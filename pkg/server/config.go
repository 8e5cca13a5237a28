package server

import "time"

type Config struct {
	// Fixed updates per second.
	TickRate int
	// Stop ticking while no peer is connected.
	PauseWhenEmpty bool
	// Seeds spawn colors, positions and orientations.
	SpawnSeed int64
}

const DefaultTickRate = 32

func (c Config) TickDuration() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}
