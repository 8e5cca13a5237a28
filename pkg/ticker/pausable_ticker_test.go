package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicks(t *testing.T) {
	ticker := New(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C:
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
	assert.Equal(t, time.Millisecond, ticker.Period())
}

func TestPauseResume(t *testing.T) {
	ticker := New(time.Millisecond)
	defer ticker.Stop()

	ticker.Pause()
	assert.True(t, ticker.Paused())

	// drain a tick that may have been buffered before pausing
	select {
	case <-ticker.C:
	default:
	}

	select {
	case <-ticker.C:
		t.Fatal("ticked while paused")
	case <-time.After(20 * time.Millisecond):
	}

	ticker.Resume()
	assert.False(t, ticker.Paused())

	select {
	case <-ticker.C:
	case <-time.After(time.Second):
		t.Fatal("no tick after resume")
	}
}

func TestStop(t *testing.T) {
	ticker := New(time.Millisecond)
	ticker.Stop()
	ticker.Stop()
	assert.True(t, ticker.Stopped())

	ticker.Resume()
	assert.False(t, ticker.Paused())
}
