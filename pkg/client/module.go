package client

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cfoust/drift/pkg/entity"
	"github.com/cfoust/drift/pkg/protocol"
	"github.com/cfoust/drift/pkg/transport"
	"github.com/cfoust/drift/pkg/utils"

	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Stats struct {
	Frames            uint64
	InputsSent        uint64
	SnapshotsAccepted uint64
	SnapshotsDropped  uint64
	Confirmations     uint64
	Reconciliations   uint64
	Replayed          uint64
	Malformed         uint64
}

// Client mirrors the server's entities, predicts the one it controls and
// interpolates the rest. It must be driven from a single goroutine.
type Client struct {
	utils.Session

	config    Config
	transport transport.Transport
	server    transport.PeerID
	connected bool

	store      *entity.Store
	controlled entity.ID

	replicator   *Replicator
	predictor    *Predictor
	interpolator *Interpolator

	// Seconds of frame time not yet converted into whole ticks.
	pending float64

	stats  Stats
	logger zerolog.Logger
}

// New creates a client talking to server over t. The JOIN is sent once the
// transport reports the connection.
func New(ctx context.Context, config Config, t transport.Transport, server transport.PeerID) *Client {
	replicator := NewReplicator()
	return &Client{
		Session:      utils.NewSession(ctx),
		config:       config,
		transport:    t,
		server:       server,
		store:        entity.NewStore(),
		controlled:   entity.None,
		replicator:   replicator,
		predictor:    NewPredictor(replicator, config.Tolerance()),
		interpolator: NewInterpolator(config.TickDuration(), config.historySize()),
		logger:       log.With().Str("component", "client").Logger(),
	}
}

func (c *Client) Store() *entity.Store {
	return c.store
}

func (c *Client) Stats() Stats {
	return c.stats
}

func (c *Client) Connected() bool {
	return c.connected
}

// Controlled is the entity this client predicts, or entity.None before the
// server has assigned one.
func (c *Client) Controlled() entity.ID {
	return c.controlled
}

// Self returns the predicted state of the controlled entity.
func (c *Client) Self() opt.Option[entity.Entity] {
	found := c.store.Lookup(c.controlled)
	if opt.IsNone(found) {
		return opt.None[entity.Entity]()
	}
	return opt.Some(*found.Value)
}

func (c *Client) Replicator() *Replicator {
	return c.replicator
}

func (c *Client) Interpolator() *Interpolator {
	return c.interpolator
}

func (c *Client) send(message protocol.Message) {
	if err := protocol.Send(c.transport, c.server, message); err != nil {
		c.logger.Debug().Err(err).Stringer("type", message.Type()).Msg("send failed")
	}
}

func (c *Client) handleNewEntity(e entity.Entity) {
	if _, added := c.store.Add(e); !added {
		return
	}

	c.logger.Debug().
		Stringer("entity", e.ID).
		Float32("x", e.X).
		Float32("y", e.Y).
		Msg("new entity")
}

func (c *Client) handleControlled(id entity.ID) {
	c.controlled = id
	c.predictor.Reset()
	c.replicator.Reset()
	c.interpolator.Forget(id)
	c.pending = 0

	c.logger.Info().Stringer("entity", id).Msg("controlling entity")
}

func (c *Client) handleSelfSnapshot(e *entity.Entity, s entity.Snapshot) {
	outcome := c.predictor.Reconcile(e, s)

	switch outcome {
	case Stale:
		c.stats.SnapshotsDropped++
		return
	case Confirmed:
		c.stats.Confirmations++
	case Reconciled:
		c.stats.Reconciliations++
		c.stats.Replayed += uint64(c.predictor.Replayed())
		c.logger.Debug().
			Uint32("gen", s.Gen).
			Int("replayed", c.predictor.Replayed()).
			Uint64("digest", e.Digest()).
			Msg("reconciled")
	}
	c.stats.SnapshotsAccepted++
}

func (c *Client) handleSnapshot(s entity.Snapshot, now time.Time) {
	found := c.store.Lookup(s.ID)
	if opt.IsNone(found) {
		// the unreliable channel can overtake NEW_ENTITY
		c.stats.SnapshotsDropped++
		return
	}
	e := found.Value

	if s.ID == c.controlled {
		c.handleSelfSnapshot(e, s)
		return
	}

	if !c.interpolator.Offer(s, now) {
		c.stats.SnapshotsDropped++
		return
	}
	c.stats.SnapshotsAccepted++

	// without two snapshots there is nothing to interpolate between
	if len(c.interpolator.History(s.ID)) < MinHistory {
		e.ApplySnapshot(s)
	}
}

func (c *Client) handlePacket(data []byte, now time.Time) {
	message, err := protocol.Decode(data)
	if errors.Is(err, protocol.ErrUnknownType) {
		return
	}
	if err != nil {
		c.stats.Malformed++
		c.logger.Debug().Err(err).Msg("dropping malformed packet")
		return
	}

	switch msg := message.(type) {
	case protocol.NewEntityMessage:
		c.handleNewEntity(msg.Entity)
	case protocol.SetControlledEntityMessage:
		c.handleControlled(msg.ID)
	case protocol.SnapshotMessage:
		c.handleSnapshot(msg.Snapshot, now)
	}
}

// HandleEvent processes one transport event received at now.
func (c *Client) HandleEvent(event transport.Event, now time.Time) {
	switch event.Type {
	case transport.EventConnect:
		if event.Peer != c.server {
			return
		}
		c.connected = true
		c.logger.Info().Msg("connected, joining")
		c.send(protocol.JoinMessage{})
	case transport.EventReceive:
		c.handlePacket(event.Data, now)
	case transport.EventDisconnect:
		if event.Peer != c.server {
			return
		}
		c.connected = false
		c.logger.Warn().Msg("disconnected from server")
	}
}

// Drain handles every pending transport event without blocking.
func (c *Client) Drain(now time.Time) int {
	count := 0
	for {
		event, ok := c.transport.Poll()
		if !ok {
			return count
		}
		c.HandleEvent(event, now)
		count++
	}
}

// advance converts accumulated frame time into whole ticks of the predicted
// generation.
func (c *Client) advance(e *entity.Entity, dt float32) {
	tick := c.config.TickDuration().Seconds()
	c.pending += float64(dt)

	ticks := math.Floor(c.pending / tick)
	if ticks <= 0 {
		return
	}
	c.pending -= ticks * tick
	e.Gen += uint32(ticks)
}

// Frame runs one client frame: receive, predict the controlled entity from
// intent over dt seconds, and move remote entities to their interpolated
// poses.
func (c *Client) Frame(dt float32, intent Intent, now time.Time) {
	c.Drain(now)
	c.stats.Frames++

	if e := c.store.Get(c.controlled); e != nil && c.connected {
		// stamped with the generation the input builds on; the server
		// applies it in the tick that produces the next one
		input := c.replicator.Capture(e.ID, e.Gen, intent, dt)
		c.send(protocol.InputMessage{Input: input})
		c.stats.InputsSent++

		c.predictor.Predict(e, input)
		c.advance(e, dt)
	}

	c.store.Each(func(e *entity.Entity) {
		if e.ID == c.controlled {
			return
		}

		pose := c.interpolator.Pose(e.ID, now)
		if opt.IsNone(pose) {
			return
		}
		e.X = pose.Value.X
		e.Y = pose.Value.Y
		e.Ori = pose.Value.Ori
	})
}

// Run drives frames at the configured frame rate until the session ends.
func (c *Client) Run(controls Controls) error {
	frame := c.config.FrameDuration()
	limiter := rate.NewLimiter(rate.Every(frame), 1)

	c.logger.Info().Dur("frame", frame).Msg("client running")

	last := time.Now()
	for {
		// fails only once the context is cancelled or its deadline is near
		if err := limiter.Wait(c.Ctx()); err != nil {
			c.logger.Info().Uint64("frames", c.stats.Frames).Msg("client stopped")
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		c.Frame(dt, controls.Intent(dt), now)
	}
}
