package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scoutbase/reefscout/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMin int // per-client request limit per minute
	Burst          int // burst capacity per client
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerMin: 120,
		Burst:          30,
	}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides in-memory per-client rate limiting. One limiter is
// kept per client key; limiters idle for an hour are dropped.
type RateLimiter struct {
	config  Config
	metrics *monitoring.Metrics

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.RequestsPerMin <= 0 {
		config.RequestsPerMin = DefaultConfig().RequestsPerMin
	}
	if config.Burst <= 0 {
		config.Burst = DefaultConfig().Burst
	}

	rl := &RateLimiter{
		config:  config,
		metrics: metrics,
		clients: make(map[string]*clientLimiter),
	}

	go rl.cleanupLoop(10 * time.Minute)
	return rl
}

// Allow checks whether the client identified by key may make a request.
func (rl *RateLimiter) Allow(key string) *Result {
	rl.mu.Lock()
	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.config.RequestsPerMin)/60.0), rl.config.Burst),
		}
		rl.clients[key] = client
	}
	client.lastSeen = time.Now()
	rl.mu.Unlock()

	allowed := client.limiter.Allow()
	if !allowed && rl.metrics != nil {
		rl.metrics.IncrementRateLimitBlock()
	}

	remaining := int(client.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     rl.config.RequestsPerMin,
		Remaining: remaining,
	}
	if !allowed {
		result.RetryAfter = time.Duration(60.0/float64(rl.config.RequestsPerMin)*float64(time.Second)) + time.Second
	}
	return result
}

// ClientCount returns the number of tracked clients
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup(time.Hour)
	}
}

func (rl *RateLimiter) cleanup(idle time.Duration) {
	cutoff := time.Now().Add(-idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}
