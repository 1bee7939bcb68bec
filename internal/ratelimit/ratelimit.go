package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/soukly/payments/internal/config"
)

// Refill and take one token atomically. Clock comes from Redis TIME so
// all API replicas share the same view of the bucket.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens)}
`

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a Redis-backed token bucket keyed per caller. A nil
// Limiter allows everything, so the API works without Redis configured.
type Limiter struct {
	client *redis.Client
	script *redis.Script
	rate   float64
	burst  int
	log    *zap.Logger
}

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Limiter {
	log = log.Named("ratelimit")

	if cfg.RedisAddr == "" || cfg.RateLimitRPS <= 0 {
		log.Info("rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.StopHook(func() error {
		return client.Close()
	}))

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RateLimitRPS))
	}

	return &Limiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		rate:   cfg.RateLimitRPS,
		burst:  burst,
		log:    log,
	}
}

func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	if key == "" {
		return nil, errors.New("rate limit key is empty")
	}

	ttl := bucketTTL(l.rate, l.burst)
	res, err := l.script.Run(ctx, l.client,
		[]string{"ratelimit:payments:" + key},
		l.rate, l.burst, int64(ttl/time.Millisecond),
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, errors.New("unexpected rate limit script reply")
	}

	allowed := toInt(res[0]) == 1
	remaining := toFloat(res[1])

	result := &Result{Allowed: allowed, Remaining: int(remaining)}
	if !allowed {
		if needed := 1.0 - remaining; needed > 0 {
			result.RetryAfter = time.Duration(needed / l.rate * float64(time.Second))
		}
	}
	return result, nil
}

// bucketTTL keeps idle buckets around long enough to fully refill.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil(float64(burst) / rate * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func toInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case float64:
		return int64(val)
	default:
		return 0
	}
}

// Lua floats come back as strings from EVAL replies.
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
