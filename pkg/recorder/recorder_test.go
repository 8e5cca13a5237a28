package recorder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cfoust/drift/pkg/entity"
	"github.com/cfoust/drift/pkg/protocol"
	"github.com/cfoust/drift/pkg/transport"
	"github.com/cfoust/drift/pkg/transport/loopback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRead(t *testing.T) {
	network := loopback.NewNetwork(loopback.Options{})
	buffer := &bytes.Buffer{}
	server := New(network.Listen(), buffer)

	client, serverID, err := network.Dial()
	require.NoError(t, err)

	require.NoError(t, protocol.Send(client, serverID, protocol.JoinMessage{}))

	// connect, then JOIN
	for i := 0; i < 2; i++ {
		_, ok := server.Poll()
		require.True(t, ok)
	}
	_, ok := server.Poll()
	require.False(t, ok)

	peer := server.Peers()[0]
	snapshot := entity.Snapshot{X: 1, Y: 2, Ori: 3, ID: 4, Gen: 5}
	require.NoError(t, protocol.Send(server, peer, protocol.SnapshotMessage{Snapshot: snapshot}))
	assert.Equal(t, uint64(3), server.Frames())
	require.NoError(t, server.Err())

	var frames []Frame
	require.NoError(t, NewReader(buffer).Each(func(frame Frame) error {
		frames = append(frames, frame)
		return nil
	}))
	require.Len(t, frames, 3)

	assert.Equal(t, transport.EventConnect, frames[0].Type)
	assert.False(t, frames[0].Outbound)

	join, err := protocol.Decode(frames[1].Data)
	require.NoError(t, err)
	assert.Equal(t, protocol.JoinMessage{}, join)
	assert.Equal(t, uint8(transport.ChannelReliable), frames[1].Channel)
	assert.Equal(t, "<-", frames[1].Direction())

	assert.True(t, frames[2].Outbound)
	assert.Equal(t, peer, frames[2].Peer)
	assert.Equal(t, uint8(transport.ChannelUnreliable), frames[2].Channel)
	decoded, err := protocol.DecodeSnapshot(frames[2].Data)
	require.NoError(t, err)
	assert.Equal(t, snapshot, decoded)
}

func TestFailedSendIsNotRecorded(t *testing.T) {
	network := loopback.NewNetwork(loopback.Options{})
	buffer := &bytes.Buffer{}
	server := New(network.Listen(), buffer)

	err := server.Send(7, transport.ChannelReliable, []byte{0})
	assert.ErrorIs(t, err, transport.ErrUnknownPeer)
	assert.Equal(t, uint64(0), server.Frames())
	assert.Zero(t, buffer.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteErrorStopsRecording(t *testing.T) {
	network := loopback.NewNetwork(loopback.Options{})
	server := New(network.Listen(), failingWriter{})

	_, _, err := network.Dial()
	require.NoError(t, err)

	_, ok := server.Poll()
	assert.True(t, ok)
	assert.Error(t, server.Err())
	assert.Equal(t, uint64(0), server.Frames())
}

func TestTruncatedRecording(t *testing.T) {
	buffer := &bytes.Buffer{}
	network := loopback.NewNetwork(loopback.Options{})
	server := New(network.Listen(), buffer)
	_, _, err := network.Dial()
	require.NoError(t, err)
	server.Poll()

	data := buffer.Bytes()
	_, err = NewReader(bytes.NewReader(data[:len(data)-2])).Next()
	assert.Error(t, err)
}
