package client

import (
	"github.com/cfoust/drift/pkg/entity"
)

// Tolerance bounds how far predicted state may drift from an authoritative
// snapshot before it is corrected.
type Tolerance struct {
	Position    float32
	Orientation float32
}

var DefaultTolerance = Tolerance{
	Position:    1.0,
	Orientation: 0.1,
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Diverged reports whether the predicted entity is outside tolerance of the
// snapshot on any replicated axis.
func Diverged(e *entity.Entity, s entity.Snapshot, tolerance Tolerance) bool {
	return abs(e.X-s.X) > tolerance.Position ||
		abs(e.Y-s.Y) > tolerance.Position ||
		abs(e.Ori-s.Ori) > tolerance.Orientation
}

// Replay applies inputs to a copy of the baseline in order. The result only
// depends on its arguments.
func Replay(baseline entity.Entity, inputs []entity.Input) entity.Entity {
	e := baseline
	for _, input := range inputs {
		entity.Apply(&e, input)
	}
	return e
}

type Outcome uint8

const (
	// Older than a snapshot already seen; ignored.
	Stale Outcome = iota
	// Within tolerance; no correction.
	Confirmed
	// Rolled back to the snapshot and replayed.
	Reconciled
)

func (o Outcome) String() string {
	switch o {
	case Stale:
		return "stale"
	case Confirmed:
		return "confirmed"
	case Reconciled:
		return "reconciled"
	}
	return "unknown"
}

// Predictor advances the locally controlled entity ahead of the server and
// corrects it when authoritative state disagrees.
type Predictor struct {
	Tolerance Tolerance

	replicator *Replicator
	lastGen    uint32
	seen       bool
	replayed   int
}

func NewPredictor(replicator *Replicator, tolerance Tolerance) *Predictor {
	return &Predictor{
		Tolerance:  tolerance,
		replicator: replicator,
	}
}

// Predict applies the input to the local entity immediately.
func (p *Predictor) Predict(e *entity.Entity, input entity.Input) {
	entity.Apply(e, input)
}

// Replayed is the number of inputs re-applied by the last reconciliation.
func (p *Predictor) Replayed() int {
	return p.replayed
}

// Reconcile compares the predicted entity against an authoritative snapshot
// of it. Snapshots older than the last one seen are skipped as Stale without
// being compared. Inputs older than the snapshot are evicted. When the entity
// has diverged it takes the snapshot's position, orientation and generation
// and every remaining input is replayed on top.
func (p *Predictor) Reconcile(e *entity.Entity, s entity.Snapshot) Outcome {
	if p.seen && s.Gen < p.lastGen {
		return Stale
	}
	p.seen = true
	p.lastGen = s.Gen
	p.replayed = 0

	p.replicator.Trim(s.Gen)

	if !Diverged(e, s, p.Tolerance) {
		return Confirmed
	}

	baseline := *e
	baseline.ApplySnapshot(s)

	inputs := p.replicator.Since(s.Gen)
	*e = Replay(baseline, inputs)
	p.replayed = len(inputs)
	return Reconciled
}

// Reset forgets the last seen generation, for a newly assigned entity.
func (p *Predictor) Reset() {
	p.seen = false
	p.lastGen = 0
	p.replayed = 0
}
