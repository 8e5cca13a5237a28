package client

import (
	"fmt"
	"math/rand"
)

// Intent is the control state sampled for one frame.
type Intent struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

func axis(negative, positive bool) float32 {
	var v float32
	if positive {
		v += 1
	}
	if negative {
		v -= 1
	}
	return v
}

func (i Intent) Throttle() float32 {
	return axis(i.Down, i.Up)
}

func (i Intent) Steer() float32 {
	return axis(i.Left, i.Right)
}

// Controls supplies an intent every frame. Keyboard polling lives outside
// this package; the implementations here drive headless clients.
type Controls interface {
	Intent(dt float32) Intent
}

type IdleControls struct{}

func (IdleControls) Intent(float32) Intent {
	return Intent{}
}

// CircleControls drives forward while turning right.
type CircleControls struct{}

func (CircleControls) Intent(float32) Intent {
	return Intent{Up: true, Right: true}
}

// RandomControls holds a random intent for a random interval, then picks
// another one.
type RandomControls struct {
	rng       *rand.Rand
	current   Intent
	remaining float32
}

func NewRandomControls(seed int64) *RandomControls {
	return &RandomControls{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomControls) Intent(dt float32) Intent {
	r.remaining -= dt
	if r.remaining <= 0 {
		r.current = Intent{
			Up:    r.rng.Intn(4) != 0,
			Down:  r.rng.Intn(6) == 0,
			Left:  r.rng.Intn(3) == 0,
			Right: r.rng.Intn(3) == 0,
		}
		r.remaining = 0.5 + 1.5*r.rng.Float32()
	}
	return r.current
}

func NewControls(name string, seed int64) (Controls, error) {
	switch name {
	case "", "idle":
		return IdleControls{}, nil
	case "circle":
		return CircleControls{}, nil
	case "random":
		return NewRandomControls(seed), nil
	}
	return nil, fmt.Errorf("unknown controls %q", name)
}
