package protocol

import (
	"fmt"

	"github.com/cfoust/drift/pkg/entity"
	"github.com/cfoust/drift/pkg/transport"
)

// MessageType is the first byte of every datagram.
type MessageType uint8

const (
	Join MessageType = iota
	NewEntity
	SetControlledEntity
	Input
	Snapshot
)

func (m MessageType) String() string {
	switch m {
	case Join:
		return "JOIN"
	case NewEntity:
		return "NEW_ENTITY"
	case SetControlledEntity:
		return "SET_CONTROLLED_ENTITY"
	case Input:
		return "INPUT"
	case Snapshot:
		return "SNAPSHOT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(m))
	}
}

// Payload sizes, not counting the type byte.
var payloadSizes = map[MessageType]int{
	Join:                0,
	NewEntity:           entity.EntitySize,
	SetControlledEntity: 2,
	Input:               entity.InputSize,
	Snapshot:            entity.SnapshotSize,
}

// PayloadSize reports the fixed payload length of a known message type.
func PayloadSize(m MessageType) (int, bool) {
	size, ok := payloadSizes[m]
	return size, ok
}

// IsServerOnly reports whether only the server may send this type.
func IsServerOnly(m MessageType) bool {
	switch m {
	case NewEntity, SetControlledEntity, Snapshot:
		return true
	}
	return false
}

// ChannelFor returns the channel a message type travels on. Entity
// lifecycle must never be lost or reordered; state streams favor the latest
// value over completeness.
func ChannelFor(m MessageType) uint8 {
	switch m {
	case Input, Snapshot:
		return transport.ChannelUnreliable
	default:
		return transport.ChannelReliable
	}
}
