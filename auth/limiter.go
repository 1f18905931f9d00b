// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"sync"
	"time"
)

// limiter tracks consecutive sign-in failures per caller key and applies a
// temporary lockout once the threshold is hit. Counts survive the lockout:
// another failure right after it lifts re-arms the block, and only a
// completed sign-in clears the slate.
type limiter struct {
	maxFails int
	blockFor time.Duration

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	fails        int
	blockedUntil time.Time
}

func newLimiter(maxFails int, blockFor time.Duration) *limiter {
	return &limiter{
		maxFails: maxFails,
		blockFor: blockFor,
		entries:  make(map[string]*limiterEntry),
	}
}

// allow reports whether an attempt may proceed and, when blocked, how long
// until the lockout lifts.
func (l *limiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return true, 0
	}
	if remaining := time.Until(e.blockedUntil); remaining > 0 {
		return false, remaining
	}
	return true, 0
}

// failure records a failed attempt and reports whether it tripped the
// lockout.
func (l *limiter) failure(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{}
		l.entries[key] = e
	}
	e.fails++
	if e.fails >= l.maxFails {
		e.blockedUntil = time.Now().Add(l.blockFor)
		return true
	}
	return false
}

// success clears the failure count after a completed sign-in.
func (l *limiter) success(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}
