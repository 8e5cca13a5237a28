package protocol

import (
	"errors"
	"fmt"

	"github.com/cfoust/drift/pkg/bitstream"
	"github.com/cfoust/drift/pkg/entity"
)

var (
	ErrShortPacket = errors.New("protocol: packet shorter than its payload")
	ErrUnknownType = errors.New("protocol: unknown message type")
	ErrWrongType   = errors.New("protocol: unexpected message type")
)

// Encode writes the type tag followed by the message's payload record.
func Encode(message Message) []byte {
	s := bitstream.New()
	s.WriteUint8(uint8(message.Type()))
	if p, ok := message.(payload); ok {
		p.encode(s)
	}
	return s.Bytes()
}

// PacketType peeks at the type tag without consuming anything.
func PacketType(data []byte) (MessageType, bool) {
	if len(data) == 0 {
		return 0, false
	}
	return MessageType(data[0]), true
}

// open validates the datagram's length and returns a stream positioned at the
// start of the payload. The length check keeps the stream's overrun panic
// out of reach of malformed traffic.
func open(data []byte) (MessageType, *bitstream.Stream, error) {
	type_, ok := PacketType(data)
	if !ok {
		return 0, nil, ErrShortPacket
	}

	size, ok := PayloadSize(type_)
	if !ok {
		return type_, nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(type_))
	}

	if len(data)-1 < size {
		return type_, nil, fmt.Errorf(
			"%w: %s needs %d bytes, got %d",
			ErrShortPacket,
			type_,
			size,
			len(data)-1,
		)
	}

	s := bitstream.FromBytes(data)
	s.Skip(1)
	return type_, s, nil
}

// Decode parses one datagram into its message.
func Decode(data []byte) (Message, error) {
	type_, s, err := open(data)
	if err != nil {
		return nil, err
	}

	switch type_ {
	case Join:
		return JoinMessage{}, nil
	case NewEntity:
		return NewEntityMessage{Entity: entity.DecodeEntity(s)}, nil
	case SetControlledEntity:
		return SetControlledEntityMessage{ID: entity.ID(s.ReadUint16())}, nil
	case Input:
		return InputMessage{Input: entity.DecodeInput(s)}, nil
	case Snapshot:
		return SnapshotMessage{Snapshot: entity.DecodeSnapshot(s)}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(type_))
}

func expect(data []byte, want MessageType) (*bitstream.Stream, error) {
	type_, s, err := open(data)
	if err != nil {
		return nil, err
	}
	if type_ != want {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongType, want, type_)
	}
	return s, nil
}

func DecodeNewEntity(data []byte) (entity.Entity, error) {
	s, err := expect(data, NewEntity)
	if err != nil {
		return entity.Entity{}, err
	}
	return entity.DecodeEntity(s), nil
}

func DecodeSetControlledEntity(data []byte) (entity.ID, error) {
	s, err := expect(data, SetControlledEntity)
	if err != nil {
		return entity.None, err
	}
	return entity.ID(s.ReadUint16()), nil
}

func DecodeInput(data []byte) (entity.Input, error) {
	s, err := expect(data, Input)
	if err != nil {
		return entity.Input{}, err
	}
	return entity.DecodeInput(s), nil
}

func DecodeSnapshot(data []byte) (entity.Snapshot, error) {
	s, err := expect(data, Snapshot)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return entity.DecodeSnapshot(s), nil
}
