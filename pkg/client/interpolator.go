package client

import (
	"time"

	"github.com/cfoust/drift/pkg/entity"

	"github.com/repeale/fp-go/option"
)

type Pose struct {
	X   float32
	Y   float32
	Ori float32
}

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

type track struct {
	snapshots  []entity.Snapshot
	acceptedAt time.Time
}

// Interpolator smooths remote entities between their two most recent
// snapshots.
type Interpolator struct {
	tick   time.Duration
	size   int
	tracks map[entity.ID]*track
}

const MinHistory = 2

func NewInterpolator(tick time.Duration, size int) *Interpolator {
	if size < MinHistory {
		size = MinHistory
	}
	return &Interpolator{
		tick:   tick,
		size:   size,
		tracks: make(map[entity.ID]*track),
	}
}

// Offer accepts the snapshot only if its generation is newer than every
// snapshot accepted so far for the same entity.
func (i *Interpolator) Offer(s entity.Snapshot, now time.Time) bool {
	t, ok := i.tracks[s.ID]
	if !ok {
		t = &track{}
		i.tracks[s.ID] = t
	}

	if n := len(t.snapshots); n > 0 && s.Gen <= t.snapshots[n-1].Gen {
		return false
	}

	t.snapshots = append(t.snapshots, s)
	if len(t.snapshots) > i.size {
		t.snapshots = append(t.snapshots[:0], t.snapshots[len(t.snapshots)-i.size:]...)
	}
	t.acceptedAt = now
	return true
}

// History returns the accepted snapshots for an entity, oldest first.
func (i *Interpolator) History(id entity.ID) []entity.Snapshot {
	t, ok := i.tracks[id]
	if !ok {
		return nil
	}
	return t.snapshots
}

// Fraction is the interpolation parameter between the two most recent
// snapshots: time since the newer one arrived, scaled by how many ticks
// separate them, clamped to [0, 1].
func (i *Interpolator) Fraction(id entity.ID, now time.Time) (float32, bool) {
	t, ok := i.tracks[id]
	if !ok || len(t.snapshots) < MinHistory || i.tick <= 0 {
		return 0, false
	}

	n := len(t.snapshots)
	older, newer := t.snapshots[n-2], t.snapshots[n-1]

	elapsed := now.Sub(t.acceptedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	fraction := float64(elapsed) * float64(newer.Gen-older.Gen) / float64(i.tick)
	if fraction > 1 {
		fraction = 1
	}
	return float32(fraction), true
}

// Pose is the interpolated render pose, or None while fewer than two
// snapshots are known.
func (i *Interpolator) Pose(id entity.ID, now time.Time) opt.Option[Pose] {
	fraction, ok := i.Fraction(id, now)
	if !ok {
		return opt.None[Pose]()
	}

	snapshots := i.tracks[id].snapshots
	n := len(snapshots)
	older, newer := snapshots[n-2], snapshots[n-1]

	return opt.Some(Pose{
		X:   Lerp(older.X, newer.X, fraction),
		Y:   Lerp(older.Y, newer.Y, fraction),
		Ori: Lerp(older.Ori, newer.Ori, fraction),
	})
}

func (i *Interpolator) Forget(id entity.ID) {
	delete(i.tracks, id)
}

func (i *Interpolator) Len() int {
	return len(i.tracks)
}
