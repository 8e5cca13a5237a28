package enet

import (
	"testing"

	"github.com/cfoust/drift/pkg/transport"

	enet "github.com/codecat/go-enet"
	"github.com/stretchr/testify/assert"
)

func TestFlagsFor(t *testing.T) {
	assert.Equal(t, enet.PacketFlagReliable, flagsFor(transport.ChannelReliable))
	assert.Equal(t, enet.PacketFlagUnsequenced, flagsFor(transport.ChannelUnreliable))
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "", None.String())
	assert.Equal(t, "host shut down", Shutdown.String())
	assert.Equal(t, "42", Reason(42).String())
}
