package main

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
// Allows bursts up to maxTokens, refilling at refillRate tokens per second.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter allowing rate requests per
// second. A rate of 0 or less creates a limiter that always allows.
func NewRateLimiter(rate int) *RateLimiter {
	if rate <= 0 {
		return &RateLimiter{
			tokens:     1,
			maxTokens:  1,
			refillRate: 0,
			lastRefill: time.Now(),
		}
	}

	return &RateLimiter{
		tokens:     float64(rate),
		maxTokens:  float64(rate),
		refillRate: float64(rate),
		lastRefill: time.Now(),
	}
}

// Allow checks if an action is allowed under the rate limit
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// refillRate 0 means unlimited
	if rl.refillRate == 0 {
		return true
	}

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}

	return false
}

// IPRateLimiterManager manages per-IP rate limiters for public endpoints
type IPRateLimiterManager struct {
	limiters map[string]*RateLimiter
	lastSeen map[string]time.Time
	rate     int // requests per second per IP
	mu       sync.Mutex

	stopChan chan struct{}
}

// NewIPRateLimiterManager creates a manager allowing rate requests per
// second per client IP and starts the idle-entry cleanup loop
func NewIPRateLimiterManager(rate int) *IPRateLimiterManager {
	m := &IPRateLimiterManager{
		limiters: make(map[string]*RateLimiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate,
		stopChan: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Allow checks the rate limit for the given client IP
func (m *IPRateLimiterManager) Allow(clientIP string) bool {
	m.mu.Lock()
	limiter, ok := m.limiters[clientIP]
	if !ok {
		limiter = NewRateLimiter(m.rate)
		m.limiters[clientIP] = limiter
	}
	m.lastSeen[clientIP] = time.Now()
	m.mu.Unlock()

	return limiter.Allow()
}

// cleanupLoop drops limiters for IPs idle longer than 10 minutes
func (m *IPRateLimiterManager) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			m.mu.Lock()
			for ip, seen := range m.lastSeen {
				if seen.Before(cutoff) {
					delete(m.limiters, ip)
					delete(m.lastSeen, ip)
				}
			}
			m.mu.Unlock()
		case <-m.stopChan:
			return
		}
	}
}

// Stop shuts down the cleanup loop
func (m *IPRateLimiterManager) Stop() {
	close(m.stopChan)
}
