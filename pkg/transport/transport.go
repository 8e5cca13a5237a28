package transport

import (
	"errors"
	"fmt"
)

// PeerID is a handle for a remote peer, unique within one transport.
type PeerID uint32

func (p PeerID) String() string {
	return fmt.Sprintf("peer-%d", uint32(p))
}

// Channels every transport provides.
const (
	// Reliable, ordered delivery.
	ChannelReliable uint8 = 0
	// At-most-once, unordered, possibly lossy delivery.
	ChannelUnreliable uint8 = 1

	ChannelCount = 2
)

type EventType uint8

const (
	EventNone EventType = iota
	EventConnect
	EventReceive
	EventDisconnect
)

func (e EventType) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventConnect:
		return "connect"
	case EventReceive:
		return "receive"
	case EventDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

type Event struct {
	Type    EventType
	Peer    PeerID
	Channel uint8
	// Only set for EventReceive. Owned by the receiver.
	Data []byte
}

var (
	ErrUnknownPeer = errors.New("transport: unknown peer")
	ErrChannel     = errors.New("transport: invalid channel")
	ErrClosed      = errors.New("transport: closed")
)

type Sender interface {
	// Send queues one datagram for the peer on the given channel. The data
	// may not be modified by the caller afterwards.
	Send(peer PeerID, channel uint8, data []byte) error
	// Peers lists the currently connected peers.
	Peers() []PeerID
}

// Transport is a connection-oriented datagram service with a reliable and
// an unreliable channel per peer.
type Transport interface {
	Sender
	// Poll returns the next pending event without blocking.
	Poll() (Event, bool)
	Close() error
}
