package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// takeScript implements the window prune-check-append as one atomic step on
// the Redis side: remove timestamps older than the cutoff, count what is
// left, and only record the new attempt when the key is under the limit.
// KEYS[1] window key, ARGV[1] cutoff micros, ARGV[2] now micros,
// ARGV[3] limit, ARGV[4] key TTL seconds, ARGV[5] unique member.
var takeScript = goredis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5])
redis.call('EXPIRE', KEYS[1], ARGV[4])
return 1
`)

// RedisRateLimiter backs the sliding window with a Redis sorted set so that
// multiple service instances share one window per client.
type RedisRateLimiter struct {
	client goredis.UniversalClient
	window time.Duration
	max    int
	prefix string
}

func NewRedisRateLimiter(client goredis.UniversalClient, max int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "forms:ratelimit:",
	}
}

func (l *RedisRateLimiter) Take(ctx context.Context, key string, now time.Time) (bool, error) {
	cutoff := now.Add(-l.window).UnixMicro()
	ttl := int64(l.window/time.Second) + 1

	res, err := takeScript.Run(ctx, l.client, []string{l.prefix + key},
		strconv.FormatInt(cutoff, 10),
		strconv.FormatInt(now.UnixMicro(), 10),
		strconv.Itoa(l.max),
		strconv.FormatInt(ttl, 10),
		windowMember(now),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit take: %w", err)
	}

	return res == 1, nil
}

// windowMember builds a sorted-set member that stays unique even when two
// attempts for the same key land in the same microsecond; scoring by the
// member itself would collapse them into one entry and undercount the window.
func windowMember(now time.Time) string {
	return strconv.FormatInt(now.UnixMicro(), 10) + ":" + uuid.NewString()
}

// RedisSubscriberStore keeps the newsletter subscriber set in a Redis set.
type RedisSubscriberStore struct {
	client goredis.UniversalClient
	key    string
}

func NewRedisSubscriberStore(client goredis.UniversalClient) *RedisSubscriberStore {
	return &RedisSubscriberStore{
		client: client,
		key:    "forms:newsletter:subscribers",
	}
}

func (s *RedisSubscriberStore) Add(ctx context.Context, email string) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key, email).Result()
	if err != nil {
		return false, fmt.Errorf("subscriber add: %w", err)
	}
	return added == 1, nil
}
