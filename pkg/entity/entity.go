package entity

import (
	"fmt"

	"github.com/cfoust/drift/pkg/bitstream"

	"github.com/cespare/xxhash/v2"
)

// ID identifies an entity for the lifetime of its owning connection. IDs are
// minted only by the server.
type ID uint16

// None marks the absence of an entity.
const None ID = 0xFFFF

func (id ID) String() string {
	if id == None {
		return "none"
	}
	return fmt.Sprintf("#%d", uint16(id))
}

const (
	EntitySize   = 4 + 6*4 + 2 + 4
	SnapshotSize = 3*4 + 2 + 4
	InputSize    = 2*4 + 2 + 4 + 4 + 4
)

// Entity is the full simulated state of a vehicle.
type Entity struct {
	Color uint32
	X     float32
	Y     float32
	Speed float32
	Ori   float32

	// Controls currently applied by the integrator.
	Thr   float32
	Steer float32

	ID  ID
	Gen uint32
}

// Snapshot is the replicated projection of an entity at a generation.
type Snapshot struct {
	X   float32
	Y   float32
	Ori float32

	ID  ID
	Gen uint32
}

// Input is one frame of control intent captured by a client.
type Input struct {
	Thr   float32
	Steer float32

	ID  ID
	Gen uint32
	// Client-local, strictly increasing.
	Seq uint32
	// Seconds of simulation this input covers.
	DT float32
}

func New(id ID) Entity {
	return Entity{
		Color: 0xff00ffff,
		ID:    id,
	}
}

func (e *Entity) Snapshot() Snapshot {
	return Snapshot{
		X:   e.X,
		Y:   e.Y,
		Ori: e.Ori,
		ID:  e.ID,
		Gen: e.Gen,
	}
}

// ApplySnapshot overwrites the replicated fields with the snapshot's.
func (e *Entity) ApplySnapshot(s Snapshot) {
	e.X = s.X
	e.Y = s.Y
	e.Ori = s.Ori
	e.Gen = s.Gen
}

func (e Entity) Encode(s *bitstream.Stream) {
	s.WriteUint32(e.Color)
	s.WriteFloat32(e.X)
	s.WriteFloat32(e.Y)
	s.WriteFloat32(e.Speed)
	s.WriteFloat32(e.Ori)
	s.WriteFloat32(e.Thr)
	s.WriteFloat32(e.Steer)
	s.WriteUint16(uint16(e.ID))
	s.WriteUint32(e.Gen)
}

func DecodeEntity(s *bitstream.Stream) Entity {
	var e Entity
	e.Color = s.ReadUint32()
	e.X = s.ReadFloat32()
	e.Y = s.ReadFloat32()
	e.Speed = s.ReadFloat32()
	e.Ori = s.ReadFloat32()
	e.Thr = s.ReadFloat32()
	e.Steer = s.ReadFloat32()
	e.ID = ID(s.ReadUint16())
	e.Gen = s.ReadUint32()
	return e
}

func (v Snapshot) Encode(s *bitstream.Stream) {
	s.WriteFloat32(v.X)
	s.WriteFloat32(v.Y)
	s.WriteFloat32(v.Ori)
	s.WriteUint16(uint16(v.ID))
	s.WriteUint32(v.Gen)
}

func DecodeSnapshot(s *bitstream.Stream) Snapshot {
	var v Snapshot
	v.X = s.ReadFloat32()
	v.Y = s.ReadFloat32()
	v.Ori = s.ReadFloat32()
	v.ID = ID(s.ReadUint16())
	v.Gen = s.ReadUint32()
	return v
}

func (i Input) Encode(s *bitstream.Stream) {
	s.WriteFloat32(i.Thr)
	s.WriteFloat32(i.Steer)
	s.WriteUint16(uint16(i.ID))
	s.WriteUint32(i.Gen)
	s.WriteUint32(i.Seq)
	s.WriteFloat32(i.DT)
}

func DecodeInput(s *bitstream.Stream) Input {
	var i Input
	i.Thr = s.ReadFloat32()
	i.Steer = s.ReadFloat32()
	i.ID = ID(s.ReadUint16())
	i.Gen = s.ReadUint32()
	i.Seq = s.ReadUint32()
	i.DT = s.ReadFloat32()
	return i
}

// Digest hashes the wire encoding of the entity. Two entities with the same
// digest are bit-for-bit identical.
func (e Entity) Digest() uint64 {
	s := bitstream.New()
	e.Encode(s)
	return xxhash.Sum64(s.Bytes())
}
