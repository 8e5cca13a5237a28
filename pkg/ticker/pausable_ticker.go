package ticker

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Ticker delivers ticks at a fixed period and can be paused without being
// recreated. While paused nothing is delivered on C; resuming starts a fresh
// period.
type Ticker struct {
	C <-chan time.Time // The channel on which the ticks are delivered.

	mutex   deadlock.Mutex
	period  time.Duration
	paused  bool
	stopped bool
	ticker  *time.Ticker
}

func New(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{
		C:      ticker.C,
		period: d,
		ticker: ticker,
	}
}

func (t *Ticker) Period() time.Duration {
	return t.period
}

func (t *Ticker) Pause() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.paused || t.stopped {
		return
	}
	t.ticker.Stop()
	t.paused = true
}

func (t *Ticker) Paused() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.paused
}

func (t *Ticker) Resume() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.paused || t.stopped {
		return
	}
	t.ticker.Reset(t.period)
	t.paused = false
}

func (t *Ticker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.stopped {
		return
	}
	t.ticker.Stop()
	t.stopped = true
}

func (t *Ticker) Stopped() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.stopped
}
