package entity

import "math"

const (
	maxSpeed      = 10.0
	maxReverse    = -0.3
	accelerate    = 3.0
	brake         = 12.0
	steerSpeedCap = 2.0
	steerFactor   = 0.3
)

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// moveTo moves from towards to by at most rate*dt without overshooting.
func moveTo(from, to, dt, rate float32) float32 {
	step := rate * dt
	if from < to {
		if from+step > to {
			return to
		}
		return from + step
	}
	if from-step < to {
		return to
	}
	return from - step
}

// Simulate advances e by dt seconds using its current throttle and steer.
// The result depends only on e and dt.
func Simulate(e *Entity, dt float32) {
	accel := float32(accelerate)
	if sign(e.Thr) != 0 && sign(e.Speed) != 0 && sign(e.Thr) != sign(e.Speed) {
		accel = brake
	}

	e.Speed = moveTo(e.Speed, clamp(e.Thr, maxReverse, 1)*maxSpeed, dt, accel)
	e.Ori += e.Steer * dt * clamp(e.Speed, -steerSpeedCap, steerSpeedCap) * steerFactor

	e.X += float32(math.Cos(float64(e.Ori))) * e.Speed * dt
	e.Y += float32(math.Sin(float64(e.Ori))) * e.Speed * dt
}

// Apply sets the entity's controls from the input and integrates over the
// input's own timestep.
func Apply(e *Entity, input Input) {
	e.Thr = input.Thr
	e.Steer = input.Steer
	Simulate(e, input.DT)
}
