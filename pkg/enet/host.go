package enet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cfoust/drift/pkg/transport"

	enet "github.com/codecat/go-enet"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var initialize sync.Once

func setup() {
	initialize.Do(func() {
		enet.Initialize()
	})
}

// Deinitialize releases the ENet library. Call once at process exit.
func Deinitialize() {
	enet.Deinitialize()
}

// Host adapts an ENet host to transport.Transport. It must only be used
// from one goroutine.
type Host struct {
	host      enet.Host
	ids       map[enet.Peer]transport.PeerID
	peers     map[transport.PeerID]enet.Peer
	connected map[transport.PeerID]bool
	nextID    transport.PeerID
	logger    zerolog.Logger
}

var _ transport.Transport = (*Host)(nil)

func newHost(host enet.Host) *Host {
	return &Host{
		host:      host,
		ids:       make(map[enet.Peer]transport.PeerID),
		peers:     make(map[transport.PeerID]enet.Peer),
		connected: make(map[transport.PeerID]bool),
		logger:    log.With().Str("component", "enet").Logger(),
	}
}

// Listen creates a server host bound to all interfaces on port.
func Listen(port int, maxPeers int) (*Host, error) {
	setup()

	host, err := enet.NewHost(
		enet.NewListenAddress(uint16(port)),
		uint64(maxPeers),
		transport.ChannelCount,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("could not listen on port %d: %w", port, err)
	}

	return newHost(host), nil
}

// Dial creates a client host and starts connecting to the server. The
// connection is usable once Poll reports a connect event for the returned
// peer.
func Dial(address string, port int) (*Host, transport.PeerID, error) {
	setup()

	host, err := enet.NewHost(nil, 1, transport.ChannelCount, 0, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("could not create client host: %w", err)
	}

	peer, err := host.Connect(
		enet.NewAddress(address, uint16(port)),
		transport.ChannelCount,
		0,
	)
	if err != nil {
		host.Destroy()
		return nil, 0, fmt.Errorf("could not connect to %s:%d: %w", address, port, err)
	}

	h := newHost(host)
	id := h.register(peer)
	return h, id, nil
}

func (h *Host) register(peer enet.Peer) transport.PeerID {
	if id, ok := h.ids[peer]; ok {
		return id
	}

	id := h.nextID
	h.nextID++
	h.ids[peer] = id
	h.peers[id] = peer
	return id
}

func (h *Host) forget(peer enet.Peer) (transport.PeerID, bool) {
	id, ok := h.ids[peer]
	if !ok {
		return 0, false
	}

	delete(h.ids, peer)
	delete(h.peers, id)
	delete(h.connected, id)
	return id, true
}

func (h *Host) Poll() (transport.Event, bool) {
	for {
		event := h.host.Service(0)

		switch event.GetType() {
		case enet.EventNone:
			return transport.Event{}, false

		case enet.EventConnect:
			id := h.register(event.GetPeer())
			h.connected[id] = true
			return transport.Event{
				Type: transport.EventConnect,
				Peer: id,
			}, true

		case enet.EventReceive:
			data := packetData(event.GetPacket())
			id, ok := h.ids[event.GetPeer()]
			if !ok || len(data) == 0 {
				continue
			}

			return transport.Event{
				Type:    transport.EventReceive,
				Peer:    id,
				Channel: event.GetChannelID(),
				Data:    data,
			}, true

		case enet.EventDisconnect:
			id, ok := h.forget(event.GetPeer())
			if !ok {
				continue
			}

			h.logger.Debug().
				Stringer("peer", id).
				Str("reason", Reason(event.GetData()).String()).
				Msg("peer disconnected")

			return transport.Event{
				Type: transport.EventDisconnect,
				Peer: id,
			}, true
		}
	}
}

func (h *Host) Send(peer transport.PeerID, channel uint8, data []byte) error {
	if channel >= transport.ChannelCount {
		return transport.ErrChannel
	}

	p, ok := h.peers[peer]
	if !ok || !h.connected[peer] {
		return transport.ErrUnknownPeer
	}

	return p.SendBytes(data, channel, flagsFor(channel))
}

func (h *Host) Peers() []transport.PeerID {
	peers := make([]transport.PeerID, 0, len(h.connected))
	for id := range h.connected {
		peers = append(peers, id)
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i] < peers[j]
	})
	return peers
}

// Close disconnects all peers and destroys the host.
func (h *Host) Close() error {
	for id := range h.connected {
		h.peers[id].Disconnect(uint32(Shutdown))
	}
	// one service pass sends the queued disconnects
	h.host.Service(0)
	h.host.Destroy()
	return nil
}
