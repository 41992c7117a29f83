package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBudget(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "fourth request should be rejected")

	// Other clients have their own window.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestWindowResets(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Age the window past a minute by hand.
	rl.mu.Lock()
	rl.clients["10.0.0.1"].lastRequest = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	assert.True(t, rl.Allow("10.0.0.1"), "window should reset after a minute idle")
}

func TestRemoveStale(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		rl.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, rl.ActiveClients())

	rl.mu.Lock()
	for _, w := range rl.clients {
		w.lastRequest = time.Now().Add(-time.Hour)
	}
	rl.mu.Unlock()

	rl.removeStale()
	assert.Equal(t, 0, rl.ActiveClients())
}

func TestMetricsCountRejections(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")

	m := rl.GetMetrics()
	assert.Equal(t, int64(1), m.ClientCount)
	assert.Equal(t, int64(2), m.RejectedRequests)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
