package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter(3, time.Minute)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		ok, err := limiter.Take(ctx, "ip", base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("take %d should be allowed", i+1)
		}
	}

	ok, err := limiter.Take(ctx, "ip", base.Add(10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("4th take inside the window should be denied")
	}
}

func TestMemoryRateLimiterRejectedAttemptNotCounted(t *testing.T) {
	limiter := NewMemoryRateLimiter(3, time.Minute)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 0; i < 3; i++ {
		_, _ = limiter.Take(ctx, "ip", base)
	}

	// Hammer the limiter while over the limit; none of these count.
	for i := 0; i < 10; i++ {
		if ok, _ := limiter.Take(ctx, "ip", base.Add(30*time.Second)); ok {
			t.Fatal("expected denial while over limit")
		}
	}

	// Just after the original three leave the window, a slot opens. If the
	// denied attempts had been recorded, this would still be blocked.
	ok, err := limiter.Take(ctx, "ip", base.Add(61*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected slot after the window elapsed")
	}
}

func TestMemoryRateLimiterPrunesStaleEntries(t *testing.T) {
	limiter := NewMemoryRateLimiter(3, time.Minute)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	_, _ = limiter.Take(ctx, "ip", base)
	_, _ = limiter.Take(ctx, "ip", base.Add(2*time.Minute))
	_, _ = limiter.Take(ctx, "ip", base.Add(2*time.Minute))
	_, _ = limiter.Take(ctx, "ip", base.Add(2*time.Minute))

	if got := len(limiter.entries["ip"]); got != 3 {
		t.Fatalf("expected the stale entry to be pruned, window has %d", got)
	}
}

func TestMemoryRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryRateLimiter(1, time.Minute)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if ok, _ := limiter.Take(ctx, "a", now); !ok {
		t.Fatal("first take for key a should pass")
	}
	if ok, _ := limiter.Take(ctx, "a", now); ok {
		t.Fatal("second take for key a should fail")
	}
	if ok, _ := limiter.Take(ctx, "b", now); !ok {
		t.Fatal("key b must not be affected by key a")
	}
}

func TestMemoryRateLimiterConcurrentTakes(t *testing.T) {
	limiter := NewMemoryRateLimiter(3, time.Minute)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Take(ctx, "ip", now)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly the limit may win, no matter how the goroutines interleave.
	if allowed != 3 {
		t.Fatalf("expected exactly 3 allowed, got %d", allowed)
	}
}

func TestMemorySubscriberStore(t *testing.T) {
	subs := NewMemorySubscriberStore()
	ctx := context.Background()

	added, err := subs.Add(ctx, "a@a.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("first add should report true")
	}

	added, err = subs.Add(ctx, "a@a.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Fatal("second add should report false")
	}

	if added, _ := subs.Add(ctx, "b@b.com"); !added {
		t.Fatal("different email should be added")
	}
}

func TestMemorySubscriberStoreConcurrentAdds(t *testing.T) {
	subs := NewMemorySubscriberStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := subs.Add(ctx, "race@example.com")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if added {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning add, got %d", wins)
	}
}
