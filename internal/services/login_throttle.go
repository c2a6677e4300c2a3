package services

import (
	"sync"
	"time"
)

const (
	DefaultLoginLockoutThreshold = 5
	DefaultLoginLockoutWindow    = 15 * time.Minute
)

// LoginThrottle locks a single account key after too many failed sign-ins inside the window.
type LoginThrottle struct {
	mu        sync.Mutex
	failures  map[string][]time.Time
	threshold int
	window    time.Duration
}

func NewLoginThrottle(threshold int, window time.Duration) *LoginThrottle {
	if threshold <= 0 {
		threshold = DefaultLoginLockoutThreshold
	}
	if window <= 0 {
		window = DefaultLoginLockoutWindow
	}
	return &LoginThrottle{
		failures:  make(map[string][]time.Time),
		threshold: threshold,
		window:    window,
	}
}

func (throttle *LoginThrottle) Locked(key string, now time.Time) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	return len(throttle.recentLocked(key, now)) >= throttle.threshold
}

func (throttle *LoginThrottle) RecordFailure(key string, now time.Time) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	throttle.failures[key] = append(throttle.recentLocked(key, now), now)
}

func (throttle *LoginThrottle) Reset(key string) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	delete(throttle.failures, key)
}

// Prune forgets every key whose failures have all left the window and returns how many
// keys were dropped.
func (throttle *LoginThrottle) Prune(now time.Time) int {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	before := len(throttle.failures)
	for key := range throttle.failures {
		throttle.recentLocked(key, now)
	}
	return before - len(throttle.failures)
}

func (throttle *LoginThrottle) Len() int {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	return len(throttle.failures)
}

// recentLocked trims the key's failures to the window, deleting the key once none remain.
func (throttle *LoginThrottle) recentLocked(key string, now time.Time) []time.Time {
	failures := throttle.failures[key]
	cutoff := now.Add(-throttle.window)

	kept := failures[:0]
	for _, failedAt := range failures {
		if failedAt.After(cutoff) {
			kept = append(kept, failedAt)
		}
	}
	if len(kept) == 0 {
		delete(throttle.failures, key)
		return nil
	}
	throttle.failures[key] = kept
	return kept
}
