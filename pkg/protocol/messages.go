package protocol

import (
	"github.com/cfoust/drift/pkg/bitstream"
	"github.com/cfoust/drift/pkg/entity"
)

type Message interface {
	Type() MessageType
}

// payload is implemented by messages that carry a record after the type.
type payload interface {
	encode(s *bitstream.Stream)
}

// JoinMessage asks the server for a controlled entity.
type JoinMessage struct{}

func (JoinMessage) Type() MessageType { return Join }

// NewEntityMessage announces an entity and its full state.
type NewEntityMessage struct {
	Entity entity.Entity
}

func (NewEntityMessage) Type() MessageType { return NewEntity }

func (m NewEntityMessage) encode(s *bitstream.Stream) {
	m.Entity.Encode(s)
}

// SetControlledEntityMessage tells a client which entity it drives.
type SetControlledEntityMessage struct {
	ID entity.ID
}

func (SetControlledEntityMessage) Type() MessageType { return SetControlledEntity }

func (m SetControlledEntityMessage) encode(s *bitstream.Stream) {
	s.WriteUint16(uint16(m.ID))
}

type InputMessage struct {
	Input entity.Input
}

func (InputMessage) Type() MessageType { return Input }

func (m InputMessage) encode(s *bitstream.Stream) {
	m.Input.Encode(s)
}

type SnapshotMessage struct {
	Snapshot entity.Snapshot
}

func (SnapshotMessage) Type() MessageType { return Snapshot }

func (m SnapshotMessage) encode(s *bitstream.Stream) {
	m.Snapshot.Encode(s)
}
