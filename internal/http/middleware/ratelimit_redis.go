package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "placement:ratelimit:"

// slidingWindowScript keeps one sorted-set member per admitted request, scored
// by its arrival in milliseconds, and admits a request while fewer than
// ARGV[3] members fall inside the trailing window.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

// RedisLimiter is a sliding-window limiter shared by every API instance.
// When Redis cannot answer, the decision falls back to the local limiter.
type RedisLimiter struct {
	client   redis.UniversalClient
	script   *redis.Script
	fallback Limiter
	now      func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, fallback Limiter) *RedisLimiter {
	if fallback == nil {
		fallback = NewRateLimiter()
	}
	return &RedisLimiter{
		client:   client,
		script:   redis.NewScript(slidingWindowScript),
		fallback: fallback,
		now:      time.Now,
	}
}

func (l *RedisLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	if l.client == nil {
		return l.fallback.Allow(key, limit, window)
	}
	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		windowMillis = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	admitted, err := l.script.Run(ctx, l.client, []string{rateLimitPrefix + key},
		l.now().UnixMilli(), windowMillis, limit, uuid.NewString()).Int64()
	if err != nil {
		return l.fallback.Allow(key, limit, window)
	}
	return admitted == 1
}
