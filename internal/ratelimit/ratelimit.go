package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter enforces sliding-window request limits per client key (an IP
// address for the public endpoints). Windows are tracked in memory; keys
// idle past the longest window are pruned on the fly.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	requestsPerDay    int
	enabled           bool

	clients map[string]*clientWindows
	mu      sync.Mutex
}

type clientWindows struct {
	minuteWindow []time.Time
	hourWindow   []time.Time
	dayWindow    []time.Time
}

// NewRateLimiter creates a rate limiter with the given per-key limits
func NewRateLimiter(requestsPerMinute, requestsPerHour, requestsPerDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		requestsPerDay:    requestsPerDay,
		enabled:           enabled,
		clients:           make(map[string]*clientWindows),
	}
}

// AllowRequest checks whether a request from the given key is allowed.
// Returns true if allowed, false if a limit is exceeded.
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	cw, ok := rl.clients[key]
	if !ok {
		cw = &clientWindows{}
		rl.clients[key] = cw
	}

	cw.cleanup(now)

	if rl.requestsPerMinute > 0 && len(cw.minuteWindow) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(cw.hourWindow) >= rl.requestsPerHour {
		return false
	}
	if rl.requestsPerDay > 0 && len(cw.dayWindow) >= rl.requestsPerDay {
		return false
	}

	cw.minuteWindow = append(cw.minuteWindow, now)
	cw.hourWindow = append(cw.hourWindow, now)
	cw.dayWindow = append(cw.dayWindow, now)

	// Drop idle keys so the map doesn't grow without bound
	for k, w := range rl.clients {
		if k == key {
			continue
		}
		w.cleanup(now)
		if len(w.dayWindow) == 0 {
			delete(rl.clients, k)
		}
	}

	return true
}

// cleanup removes expired entries from the time windows
func (cw *clientWindows) cleanup(now time.Time) {
	cw.minuteWindow = filterTimes(cw.minuteWindow, now.Add(-1*time.Minute))
	cw.hourWindow = filterTimes(cw.hourWindow, now.Add(-1*time.Hour))
	cw.dayWindow = filterTimes(cw.dayWindow, now.Add(-24*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Stats is a snapshot of limiter state
type Stats struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	RequestsPerHour   int  `json:"requests_per_hour"`
	RequestsPerDay    int  `json:"requests_per_day"`
	TrackedClients    int  `json:"tracked_clients"`
}

// GetStats returns current limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		Enabled:           rl.enabled,
		RequestsPerMinute: rl.requestsPerMinute,
		RequestsPerHour:   rl.requestsPerHour,
		RequestsPerDay:    rl.requestsPerDay,
		TrackedClients:    len(rl.clients),
	}
}
