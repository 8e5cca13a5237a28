package protocol

import (
	"testing"

	"github.com/cfoust/drift/pkg/entity"
	"github.com/cfoust/drift/pkg/transport"
	"github.com/cfoust/drift/pkg/transport/loopback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	messages := []Message{
		JoinMessage{},
		NewEntityMessage{Entity: entity.Entity{
			Color: 0xff448800,
			X:     10,
			Y:     -5,
			Speed: 2,
			Ori:   1.25,
			Thr:   1,
			Steer: -1,
			ID:    3,
			Gen:   77,
		}},
		SetControlledEntityMessage{ID: 3},
		InputMessage{Input: entity.Input{
			Thr:   -1,
			Steer: 1,
			ID:    3,
			Gen:   12,
			Seq:   1000,
			DT:    0.016,
		}},
		SnapshotMessage{Snapshot: entity.Snapshot{
			X:   1,
			Y:   2,
			Ori: 3,
			ID:  4,
			Gen: 5,
		}},
	}

	for _, before := range messages {
		data := Encode(before)

		size, ok := PayloadSize(before.Type())
		require.True(t, ok)
		assert.Len(t, data, 1+size, before.Type().String())

		type_, ok := PacketType(data)
		require.True(t, ok)
		assert.Equal(t, before.Type(), type_)

		after, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, before, after, "should yield same result")
	}
}

func TestTypedDecoders(t *testing.T) {
	e := entity.New(9)
	e.X = 4

	decoded, err := DecodeNewEntity(Encode(NewEntityMessage{Entity: e}))
	require.NoError(t, err)
	assert.Equal(t, e, decoded)

	id, err := DecodeSetControlledEntity(Encode(SetControlledEntityMessage{ID: 9}))
	require.NoError(t, err)
	assert.Equal(t, entity.ID(9), id)

	input := entity.Input{Thr: 1, ID: 9, Seq: 2, DT: 0.5}
	decodedInput, err := DecodeInput(Encode(InputMessage{Input: input}))
	require.NoError(t, err)
	assert.Equal(t, input, decodedInput)

	snap := e.Snapshot()
	decodedSnap, err := DecodeSnapshot(Encode(SnapshotMessage{Snapshot: snap}))
	require.NoError(t, err)
	assert.Equal(t, snap, decodedSnap)

	_, err = DecodeSnapshot(Encode(InputMessage{Input: input}))
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestMalformedPackets(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrShortPacket)

	_, ok := PacketType(nil)
	assert.False(t, ok)

	data := Encode(SnapshotMessage{})
	_, err = Decode(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrShortPacket)

	_, err = DecodeSetControlledEntity([]byte{byte(SetControlledEntity), 1})
	assert.ErrorIs(t, err, ErrShortPacket)

	_, err = Decode([]byte{200, 1, 2, 3})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestTrailingBytesAreIgnored(t *testing.T) {
	data := append(Encode(SetControlledEntityMessage{ID: 2}), 0xFF, 0xFF)
	message, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SetControlledEntityMessage{ID: 2}, message)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, transport.ChannelReliable, ChannelFor(Join))
	assert.Equal(t, transport.ChannelReliable, ChannelFor(NewEntity))
	assert.Equal(t, transport.ChannelReliable, ChannelFor(SetControlledEntity))
	assert.Equal(t, transport.ChannelUnreliable, ChannelFor(Input))
	assert.Equal(t, transport.ChannelUnreliable, ChannelFor(Snapshot))

	assert.True(t, IsServerOnly(Snapshot))
	assert.False(t, IsServerOnly(Input))
	assert.Equal(t, "SET_CONTROLLED_ENTITY", SetControlledEntity.String())
	assert.Equal(t, "UNKNOWN(9)", MessageType(9).String())
}

func TestSendAndBroadcast(t *testing.T) {
	network := loopback.NewNetwork(loopback.Options{})
	server := network.Listen()

	a, _, err := network.Dial()
	require.NoError(t, err)
	b, serverID, err := network.Dial()
	require.NoError(t, err)

	require.NoError(t, Send(b, serverID, JoinMessage{}))
	require.NoError(t, Broadcast(server, SnapshotMessage{Snapshot: entity.Snapshot{ID: 1, Gen: 2}}))

	for _, client := range []*loopback.Endpoint{a, b} {
		event, ok := client.Poll()
		require.True(t, ok)
		assert.Equal(t, transport.EventConnect, event.Type)

		event, ok = client.Poll()
		require.True(t, ok)
		assert.Equal(t, transport.ChannelUnreliable, event.Channel)

		snap, err := DecodeSnapshot(event.Data)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), snap.Gen)
	}

	var join transport.Event
	for {
		event, ok := server.Poll()
		require.True(t, ok)
		if event.Type == transport.EventReceive {
			join = event
			break
		}
	}
	assert.Equal(t, transport.ChannelReliable, join.Channel)
	type_, _ := PacketType(join.Data)
	assert.Equal(t, Join, type_)

	err = Send(b, serverID+5, JoinMessage{})
	assert.ErrorIs(t, err, transport.ErrUnknownPeer)
}
