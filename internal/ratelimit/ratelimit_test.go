package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 1, 3, 3, 3},
		{"exceeding burst blocks", 1, 2, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("test") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	assert.True(t, rl.Allow("key1"))
	assert.False(t, rl.Allow("key1"))
	// Other keys have their own bucket.
	assert.True(t, rl.Allow("key2"))
}
