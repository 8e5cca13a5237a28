package loopback

import (
	"math/rand"
	"sort"

	"github.com/cfoust/drift/pkg/transport"

	"github.com/sasha-s/go-deadlock"
)

type Options struct {
	// Probability that a datagram on the unreliable channel is dropped.
	Loss float64
	// Probability that a datagram on the unreliable channel is held back
	// and delivered after the next one on the same link.
	Reorder float64
	Seed    int64
}

type Stats struct {
	Delivered uint64
	Dropped   uint64
	Reordered uint64
}

// Network connects endpoints in memory. It is safe for concurrent use, so a
// server and its clients may each run on their own goroutine.
type Network struct {
	mutex   deadlock.Mutex
	options Options
	rng     *rand.Rand
	stats   Stats
	server  *Endpoint
}

func NewNetwork(options Options) *Network {
	return &Network{
		options: options,
		rng:     rand.New(rand.NewSource(options.Seed)),
	}
}

type link struct {
	remote *Endpoint
	// The ID the remote endpoint knows us by.
	self transport.PeerID
	held *transport.Event
}

// Endpoint is one side of the network and implements transport.Transport.
type Endpoint struct {
	network *Network
	inbox   []transport.Event
	links   map[transport.PeerID]*link
	nextID  transport.PeerID
	closed  bool
}

var _ transport.Transport = (*Endpoint)(nil)

func (n *Network) newEndpoint() *Endpoint {
	return &Endpoint{
		network: n,
		links:   make(map[transport.PeerID]*link),
	}
}

// Listen returns the network's server endpoint, creating it on first use.
func (n *Network) Listen() *Endpoint {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.server == nil {
		n.server = n.newEndpoint()
	}
	return n.server
}

// Dial connects a new client endpoint to the server. Both sides observe a
// connect event. The returned peer ID is the server as seen by the client.
func (n *Network) Dial() (*Endpoint, transport.PeerID, error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.server == nil || n.server.closed {
		return nil, 0, transport.ErrClosed
	}

	client := n.newEndpoint()
	server := n.server

	clientID := server.nextID
	server.nextID++
	serverID := client.nextID
	client.nextID++

	server.links[clientID] = &link{remote: client, self: serverID}
	client.links[serverID] = &link{remote: server, self: clientID}

	server.inbox = append(server.inbox, transport.Event{
		Type: transport.EventConnect,
		Peer: clientID,
	})
	client.inbox = append(client.inbox, transport.Event{
		Type: transport.EventConnect,
		Peer: serverID,
	})

	return client, serverID, nil
}

func (n *Network) Stats() Stats {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.stats
}

// Flush delivers every datagram that is being held back for reordering. The
// server's links go first, then each client's, both in peer order, so a
// seeded network flushes the same way every run.
func (n *Network) Flush() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.server == nil {
		return
	}

	endpoints := []*Endpoint{n.server}
	for _, id := range n.server.peers() {
		endpoints = append(endpoints, n.server.links[id].remote)
	}

	for _, e := range endpoints {
		for _, id := range e.peers() {
			l := e.links[id]
			if l.held != nil {
				n.deliver(l.remote, *l.held)
				l.held = nil
			}
		}
	}
}

func (n *Network) deliver(to *Endpoint, event transport.Event) {
	if to.closed {
		return
	}
	to.inbox = append(to.inbox, event)
	n.stats.Delivered++
}

func (e *Endpoint) Send(peer transport.PeerID, channel uint8, data []byte) error {
	n := e.network
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if e.closed {
		return transport.ErrClosed
	}

	l, ok := e.links[peer]
	if !ok {
		return transport.ErrUnknownPeer
	}

	if channel >= transport.ChannelCount {
		return transport.ErrChannel
	}

	payload := make([]byte, len(data))
	copy(payload, data)

	event := transport.Event{
		Type:    transport.EventReceive,
		Peer:    l.self,
		Channel: channel,
		Data:    payload,
	}

	if channel == transport.ChannelReliable {
		n.deliver(l.remote, event)
		return nil
	}

	if n.rng.Float64() < n.options.Loss {
		n.stats.Dropped++
		return nil
	}

	if l.held == nil && n.rng.Float64() < n.options.Reorder {
		l.held = &event
		n.stats.Reordered++
		return nil
	}

	n.deliver(l.remote, event)
	if l.held != nil {
		n.deliver(l.remote, *l.held)
		l.held = nil
	}

	return nil
}

func (e *Endpoint) Peers() []transport.PeerID {
	n := e.network
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return e.peers()
}

// peers lists the linked peer IDs in ascending order. The network mutex must
// be held.
func (e *Endpoint) peers() []transport.PeerID {
	peers := make([]transport.PeerID, 0, len(e.links))
	for id := range e.links {
		peers = append(peers, id)
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i] < peers[j]
	})
	return peers
}

func (e *Endpoint) Poll() (transport.Event, bool) {
	n := e.network
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if len(e.inbox) == 0 {
		return transport.Event{}, false
	}

	event := e.inbox[0]
	e.inbox = e.inbox[1:]
	return event, true
}

// Close disconnects every peer. Remote endpoints observe a disconnect event.
func (e *Endpoint) Close() error {
	n := e.network
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if e.closed {
		return nil
	}

	for id, l := range e.links {
		delete(l.remote.links, l.self)
		n.deliver(l.remote, transport.Event{
			Type: transport.EventDisconnect,
			Peer: l.self,
		})
		delete(e.links, id)
	}

	e.closed = true
	e.inbox = nil
	return nil
}
