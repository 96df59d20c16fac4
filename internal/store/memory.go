package store

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is the default in-process rate limiter. Entries live for
// the process lifetime; a stale key costs one empty slice, which is an
// accepted trade-off for a low-volume forms service.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func NewMemoryRateLimiter(max int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *MemoryRateLimiter) Take(ctx context.Context, key string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)

	// Drop stale timestamps outside the window.
	valid := l.entries[key][:0]
	for _, ts := range l.entries[key] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= l.max {
		l.entries[key] = valid
		return false, nil
	}

	l.entries[key] = append(valid, now)
	return true, nil
}

// MemorySubscriberStore is the default in-process subscriber set.
type MemorySubscriberStore struct {
	mu          sync.Mutex
	subscribers map[string]struct{}
}

func NewMemorySubscriberStore() *MemorySubscriberStore {
	return &MemorySubscriberStore{subscribers: make(map[string]struct{})}
}

func (s *MemorySubscriberStore) Add(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[email]; exists {
		return false, nil
	}
	s.subscribers[email] = struct{}{}
	return true, nil
}
