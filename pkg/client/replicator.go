package client

import (
	"github.com/cfoust/drift/pkg/entity"
)

// Replicator stamps outgoing inputs and keeps them, in sequence order, until
// a reconciliation baseline supersedes them.
type Replicator struct {
	next    uint32
	history []entity.Input
}

func NewReplicator() *Replicator {
	return &Replicator{}
}

// Capture builds the input for this frame and records it.
func (r *Replicator) Capture(id entity.ID, gen uint32, intent Intent, dt float32) entity.Input {
	input := entity.Input{
		Thr:   intent.Throttle(),
		Steer: intent.Steer(),
		ID:    id,
		Gen:   gen,
		Seq:   r.next,
		DT:    dt,
	}
	r.next++
	r.history = append(r.history, input)
	return input
}

// Sequence is the number the next captured input will carry.
func (r *Replicator) Sequence() uint32 {
	return r.next
}

func (r *Replicator) History() []entity.Input {
	return r.history
}

func (r *Replicator) Len() int {
	return len(r.history)
}

// Since returns a copy of every retained input whose generation is at least
// gen, in sequence order. Generations are not monotonic in the history: a
// reconciliation moves the predicted generation back to the server's.
func (r *Replicator) Since(gen uint32) []entity.Input {
	var inputs []entity.Input
	for _, input := range r.history {
		if input.Gen >= gen {
			inputs = append(inputs, input)
		}
	}
	return inputs
}

// Trim evicts inputs older than gen and returns how many were removed.
func (r *Replicator) Trim(gen uint32) int {
	kept := r.history[:0]
	for _, input := range r.history {
		if input.Gen >= gen {
			kept = append(kept, input)
		}
	}

	removed := len(r.history) - len(kept)
	// clear the tail so evicted inputs can be collected
	for i := len(kept); i < len(r.history); i++ {
		r.history[i] = entity.Input{}
	}
	r.history = kept
	return removed
}

// Reset forgets the history. Sequence numbers keep increasing.
func (r *Replicator) Reset() {
	r.history = nil
}
