package enet

import (
	"github.com/cfoust/drift/pkg/transport"

	enet "github.com/codecat/go-enet"
)

// flagsFor maps a logical channel to ENet delivery flags. The reliable
// channel is sequenced and acknowledged; the unreliable one is neither.
func flagsFor(channel uint8) enet.PacketFlags {
	if channel == transport.ChannelReliable {
		return enet.PacketFlagReliable
	}
	return enet.PacketFlagUnsequenced
}

// packetData copies the payload out of an ENet packet and releases it.
func packetData(packet enet.Packet) []byte {
	if packet == nil {
		return nil
	}
	defer packet.Destroy()

	data := packet.GetData()
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied
}
