package utils

import (
	"context"
	"time"
)

// Session ties a component's lifetime to a cancellable context.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
}

func NewSession(parent context.Context) Session {
	ctx, cancel := context.WithCancel(parent)
	return Session{
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
}

func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Done is closed once the session or its parent context is cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Cancel ends the session. It is safe to call from any goroutine and more
// than once.
func (s *Session) Cancel() {
	s.cancel()
}

// Uptime is the time elapsed since the session was created.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.started)
}
