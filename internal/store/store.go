// Package store holds the shared mutable state behind the anti-spam gate:
// per-client rate-limit windows and the newsletter subscriber set. Both are
// interfaces so a single-node deployment can run on process memory while a
// multi-instance deployment backs them with Redis.
package store

import (
	"context"
	"time"
)

// RateLimiter tracks submission timestamps per key over a sliding window.
type RateLimiter interface {
	// Take prunes the key's window to entries newer than now minus the
	// window, then reports whether another submission is allowed. When it
	// is, now is appended to the window; a rejected attempt is not counted.
	// The prune-check-append sequence is atomic per key.
	Take(ctx context.Context, key string, now time.Time) (bool, error)
}

// SubscriberStore is the newsletter subscriber set.
type SubscriberStore interface {
	// Add inserts email into the set. It returns false when the email was
	// already present. Membership test and insert are atomic.
	Add(ctx context.Context, email string) (bool, error)
}
