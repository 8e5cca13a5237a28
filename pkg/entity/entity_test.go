package entity

import (
	"math"
	"testing"

	"github.com/cfoust/drift/pkg/bitstream"

	"github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedSizes(t *testing.T) {
	s := bitstream.New()
	Entity{}.Encode(s)
	assert.Equal(t, EntitySize, s.Len())

	s = bitstream.New()
	Snapshot{}.Encode(s)
	assert.Equal(t, SnapshotSize, s.Len())

	s = bitstream.New()
	Input{}.Encode(s)
	assert.Equal(t, InputSize, s.Len())
}

func TestEncodeDecode(t *testing.T) {
	e := Entity{
		Color: 0xff443322,
		X:     1.5,
		Y:     -2,
		Speed: 3,
		Ori:   0.25,
		Thr:   1,
		Steer: -1,
		ID:    7,
		Gen:   99,
	}

	s := bitstream.New()
	e.Encode(s)
	assert.Equal(t, e, DecodeEntity(s))

	snap := e.Snapshot()
	s = bitstream.New()
	snap.Encode(s)
	assert.Equal(t, snap, DecodeSnapshot(s))

	input := Input{Thr: 1, Steer: 0.5, ID: 7, Gen: 12, Seq: 40, DT: 1.0 / 60}
	s = bitstream.New()
	input.Encode(s)
	assert.Equal(t, input, DecodeInput(s))
}

func TestApplySnapshot(t *testing.T) {
	e := New(3)
	e.Speed = 4
	e.ApplySnapshot(Snapshot{X: 1, Y: 2, Ori: 3, ID: 3, Gen: 10})

	assert.Equal(t, float32(1), e.X)
	assert.Equal(t, float32(2), e.Y)
	assert.Equal(t, float32(3), e.Ori)
	assert.Equal(t, uint32(10), e.Gen)
	// speed is not replicated
	assert.Equal(t, float32(4), e.Speed)
}

func TestSimulateAccelerates(t *testing.T) {
	e := New(0)
	e.Thr = 1

	for i := 0; i < 60; i++ {
		Simulate(&e, 1.0/60)
	}

	assert.InDelta(t, 3, e.Speed, 1e-4)
	assert.Greater(t, e.X, float32(0))
	assert.InDelta(t, 0, e.Y, 1e-6)
}

func TestSimulateSpeedIsCapped(t *testing.T) {
	e := New(0)
	e.Thr = 1
	for i := 0; i < 1000; i++ {
		Simulate(&e, 0.1)
	}
	assert.Equal(t, float32(maxSpeed), e.Speed)

	e.Thr = -1
	for i := 0; i < 1000; i++ {
		Simulate(&e, 0.1)
	}
	assert.InDelta(t, maxReverse*maxSpeed, e.Speed, 1e-5)
}

func TestSimulateSteersOnlyWhenMoving(t *testing.T) {
	e := New(0)
	e.Steer = 1
	Simulate(&e, 1)
	assert.Equal(t, float32(0), e.Ori)

	e.Speed = 5
	e.Thr = 0.5
	Simulate(&e, 0.5)
	assert.Greater(t, e.Ori, float32(0))
}

func TestSimulateIsDeterministic(t *testing.T) {
	run := func() Entity {
		e := New(1)
		inputs := []Input{
			{Thr: 1, DT: 0.016},
			{Thr: 1, Steer: 1, DT: 0.017},
			{Thr: -1, Steer: -1, DT: 0.016},
			{Thr: 0, Steer: 1, DT: 0.033},
		}
		for i := 0; i < 50; i++ {
			Apply(&e, inputs[i%len(inputs)])
		}
		return e
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
	assert.Equal(t, first.Digest(), second.Digest())
	assert.False(t, math.IsNaN(float64(first.X)))
}

func TestDigestChangesWithState(t *testing.T) {
	a := New(1)
	b := New(1)
	assert.Equal(t, a.Digest(), b.Digest())

	b.X = 0.0001
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Equal(t, ID(0), s.NextID())

	e, added := s.Add(New(0))
	require.True(t, added)
	e.X = 5

	// stored by pointer, mutations stick
	assert.Equal(t, float32(5), s.Get(0).X)

	dup := New(0)
	dup.X = 100
	existing, added := s.Add(dup)
	assert.False(t, added)
	assert.Equal(t, float32(5), existing.X)

	s.Add(New(4))
	s.Add(New(2))
	assert.Equal(t, []ID{0, 4, 2}, s.IDs())
	assert.Equal(t, ID(5), s.NextID())

	assert.True(t, opt.IsSome(s.Lookup(4)))
	assert.True(t, opt.IsNone(s.Lookup(9)))
	assert.Nil(t, s.Get(9))

	var visited []ID
	s.Each(func(e *Entity) {
		visited = append(visited, e.ID)
	})
	assert.Equal(t, []ID{0, 4, 2}, visited)
	assert.Equal(t, 3, s.Len())
}

func TestNextIDSkipsNone(t *testing.T) {
	s := NewStore()
	s.Add(New(None - 1))
	next := s.NextID()
	assert.NotEqual(t, None, next)
	assert.Equal(t, ID(0), next)
}
