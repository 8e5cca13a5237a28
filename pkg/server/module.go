package server

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/cfoust/drift/pkg/entity"
	"github.com/cfoust/drift/pkg/protocol"
	"github.com/cfoust/drift/pkg/ticker"
	"github.com/cfoust/drift/pkg/transport"
	"github.com/cfoust/drift/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// How often a paused server checks for new peers.
const idlePoll = 250 * time.Millisecond

type Stats struct {
	Ticks         uint64
	Joins         uint64
	InputsQueued  uint64
	InputsApplied uint64
	InputsDropped uint64
	Snapshots     uint64
	Malformed     uint64
	// Server-only messages sent by a client.
	Rejected uint64
}

// TickReport summarizes one tick for observers.
type TickReport struct {
	Tick     uint64
	Entities int
	Peers    int
	Applied  int
	Stats    Stats
}

// Server owns the authoritative entity state. All methods except Run's
// context handling must be called from a single goroutine.
type Server struct {
	utils.Session

	config    Config
	transport transport.Transport
	store     *entity.Store

	// Inputs received since the last tick, in arrival order.
	queues map[entity.ID][]entity.Input
	// Entity to controlling peer. Entries outlive their peer.
	owners     map[entity.ID]transport.PeerID
	controlled map[transport.PeerID]entity.ID

	rng    *rand.Rand
	stats  Stats
	logger zerolog.Logger

	Reports *utils.Topic[TickReport]
}

func New(ctx context.Context, config Config, t transport.Transport) *Server {
	seed := config.SpawnSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Server{
		Session:    utils.NewSession(ctx),
		config:     config,
		transport:  t,
		store:      entity.NewStore(),
		queues:     make(map[entity.ID][]entity.Input),
		owners:     make(map[entity.ID]transport.PeerID),
		controlled: make(map[transport.PeerID]entity.ID),
		rng:        rand.New(rand.NewSource(seed)),
		logger:     log.With().Str("component", "server").Logger(),
		Reports:    utils.NewTopic[TickReport](),
	}
}

func (s *Server) Store() *entity.Store {
	return s.store
}

func (s *Server) Stats() Stats {
	return s.stats
}

// Owner returns the peer that controls the entity.
func (s *Server) Owner(id entity.ID) (transport.PeerID, bool) {
	peer, ok := s.owners[id]
	return peer, ok
}

// Controlled returns the entity a peer controls, or entity.None.
func (s *Server) Controlled(peer transport.PeerID) entity.ID {
	if id, ok := s.controlled[peer]; ok {
		return id
	}
	return entity.None
}

// Pending returns the inputs queued for the entity since the last tick.
func (s *Server) Pending(id entity.ID) []entity.Input {
	return s.queues[id]
}

func (s *Server) send(peer transport.PeerID, message protocol.Message) {
	if err := protocol.Send(s.transport, peer, message); err != nil {
		s.logger.Debug().Err(err).Msg("send failed")
	}
}

func (s *Server) broadcast(message protocol.Message) {
	if err := protocol.Broadcast(s.transport, message); err != nil {
		s.logger.Debug().Err(err).Msg("broadcast failed")
	}
}

func (s *Server) spawn(id entity.ID) entity.Entity {
	e := entity.New(id)
	e.Color = 0xff000000 +
		0x00440000*uint32(s.rng.Intn(5)) +
		0x00004400*uint32(s.rng.Intn(5)) +
		0x00000044*uint32(s.rng.Intn(5))
	e.X = float32(s.rng.Intn(4)) * 5
	e.Y = float32(s.rng.Intn(4)) * 5
	e.Ori = s.rng.Float32() * math.Pi
	return e
}

func (s *Server) handleJoin(peer transport.PeerID) {
	if id, ok := s.controlled[peer]; ok {
		s.logger.Debug().
			Stringer("peer", peer).
			Stringer("entity", id).
			Msg("ignoring repeated join")
		return
	}

	// the joiner learns about the world before its own entity exists
	s.store.Each(func(e *entity.Entity) {
		s.send(peer, protocol.NewEntityMessage{Entity: *e})
	})

	id := s.store.NextID()
	if id == entity.None {
		s.logger.Warn().Stringer("peer", peer).Msg("no free entity identifiers")
		return
	}

	e, _ := s.store.Add(s.spawn(id))
	s.owners[id] = peer
	s.controlled[peer] = id
	s.stats.Joins++

	s.logger.Info().
		Stringer("peer", peer).
		Stringer("entity", id).
		Float32("x", e.X).
		Float32("y", e.Y).
		Msg("spawned entity")

	s.broadcast(protocol.NewEntityMessage{Entity: *e})
	s.send(peer, protocol.SetControlledEntityMessage{ID: id})
}

func (s *Server) handleInput(peer transport.PeerID, input entity.Input) {
	owner, ok := s.owners[input.ID]
	if !ok || owner != peer {
		s.stats.InputsDropped++
		s.logger.Debug().
			Stringer("peer", peer).
			Stringer("entity", input.ID).
			Msg("dropping input for entity the peer does not control")
		return
	}

	s.queues[input.ID] = append(s.queues[input.ID], input)
	s.stats.InputsQueued++
}

func (s *Server) handlePacket(peer transport.PeerID, data []byte) {
	message, err := protocol.Decode(data)
	if errors.Is(err, protocol.ErrUnknownType) {
		return
	}
	if err != nil {
		s.stats.Malformed++
		s.logger.Debug().Err(err).Stringer("peer", peer).Msg("dropping malformed packet")
		return
	}

	if protocol.IsServerOnly(message.Type()) {
		s.stats.Rejected++
		s.logger.Debug().
			Stringer("peer", peer).
			Stringer("type", message.Type()).
			Msg("rejecting server-only message from client")
		return
	}

	switch msg := message.(type) {
	case protocol.JoinMessage:
		s.handleJoin(peer)
	case protocol.InputMessage:
		s.handleInput(peer, msg.Input)
	}
}

// HandleEvent processes one transport event.
func (s *Server) HandleEvent(event transport.Event) {
	switch event.Type {
	case transport.EventConnect:
		s.logger.Info().Stringer("peer", event.Peer).Msg("connection established")
	case transport.EventReceive:
		s.handlePacket(event.Peer, event.Data)
	case transport.EventDisconnect:
		// entities of a vanished peer stay in the world
		s.logger.Info().
			Stringer("peer", event.Peer).
			Stringer("entity", s.Controlled(event.Peer)).
			Msg("peer disconnected")
	}
}

// Drain handles every pending transport event without blocking and returns
// how many there were.
func (s *Server) Drain() int {
	count := 0
	for {
		event, ok := s.transport.Poll()
		if !ok {
			return count
		}
		s.HandleEvent(event)
		count++
	}
}

// Tick advances every entity by its queued inputs, bumps its generation once
// and sends its snapshot to every peer, the controller included.
func (s *Server) Tick() TickReport {
	applied := 0

	s.store.Each(func(e *entity.Entity) {
		for _, input := range s.queues[e.ID] {
			entity.Apply(e, input)
			applied++
		}
		delete(s.queues, e.ID)

		e.Gen++

		s.broadcast(protocol.SnapshotMessage{Snapshot: e.Snapshot()})
		s.stats.Snapshots += uint64(len(s.transport.Peers()))
	})

	s.stats.Ticks++
	s.stats.InputsApplied += uint64(applied)

	report := TickReport{
		Tick:     s.stats.Ticks,
		Entities: s.store.Len(),
		Peers:    len(s.transport.Peers()),
		Applied:  applied,
		Stats:    s.stats,
	}

	s.logger.Debug().
		Uint64("tick", report.Tick).
		Int("entities", report.Entities).
		Int("applied", applied).
		Msg("tick")

	s.Reports.Publish(report)
	return report
}

// Step is one poll, simulate and broadcast cycle.
func (s *Server) Step() TickReport {
	s.Drain()
	return s.Tick()
}

// Run steps the server at the configured tick rate until the session ends.
func (s *Server) Run() error {
	period := s.config.TickDuration()
	tick := ticker.New(period)
	defer tick.Stop()

	idle := time.NewTicker(idlePoll)
	defer idle.Stop()

	s.logger.Info().
		Dur("period", period).
		Int("rate", int(time.Second/period)).
		Msg("server running")

	for {
		select {
		case <-s.Done():
			return nil
		case <-tick.C:
			s.Step()

			if s.config.PauseWhenEmpty && len(s.transport.Peers()) == 0 {
				s.logger.Info().Msg("no peers connected, pausing")
				tick.Pause()
			}
		case <-idle.C:
			if !tick.Paused() {
				continue
			}

			s.Drain()
			if len(s.transport.Peers()) > 0 {
				s.logger.Info().Msg("peer connected, resuming")
				tick.Resume()
			}
		}
	}
}
