package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowRequest_MinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 100, 1000, true)

	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.False(t, rl.AllowRequest("1.2.3.4"))
}

func TestAllowRequest_PerKeyIsolation(t *testing.T) {
	rl := NewRateLimiter(1, 100, 1000, true)

	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.False(t, rl.AllowRequest("1.2.3.4"))

	// A different client is unaffected
	assert.True(t, rl.AllowRequest("5.6.7.8"))
}

func TestAllowRequest_Disabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest("1.2.3.4"))
	}
}

func TestAllowRequest_ZeroLimitUnbounded(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0, true)

	for i := 0; i < 50; i++ {
		assert.True(t, rl.AllowRequest("1.2.3.4"))
	}
}

func TestGetStats(t *testing.T) {
	rl := NewRateLimiter(10, 60, 200, true)

	rl.AllowRequest("1.2.3.4")
	rl.AllowRequest("5.6.7.8")

	stats := rl.GetStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 10, stats.RequestsPerMinute)
	assert.Equal(t, 60, stats.RequestsPerHour)
	assert.Equal(t, 200, stats.RequestsPerDay)
	assert.Equal(t, 2, stats.TrackedClients)
}
