package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	pkgcache "catalog-api/pkg/cache"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills KEYS[1] at ARGV[1] tokens/s up to ARGV[2] and
// takes one token. Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key  = KEYS[1]
local rate = tonumber(ARGV[1])
local cap  = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])
if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`)

// TokenBucket is a Redis-backed token bucket shared by every API replica.
type TokenBucket struct {
	client redis.Scripter
	rate   float64
	burst  int
	prefix string
}

func NewTokenBucket(client redis.Scripter, ratePerSecond float64, burst int) *TokenBucket {
	return &TokenBucket{client: client, rate: ratePerSecond, burst: burst, prefix: "ratelimit"}
}

// Allow takes one token from the bucket of key.
func (tb *TokenBucket) Allow(ctx context.Context, key string) (pkgcache.RateDecision, error) {
	res, err := tokenBucketScript.Run(ctx, tb.client, []string{tb.prefix + ":" + key},
		strconv.FormatFloat(tb.rate, 'f', -1, 64),
		strconv.Itoa(tb.burst),
	).Int64Slice()
	if err != nil {
		return pkgcache.RateDecision{}, fmt.Errorf("token bucket %s: %w", key, err)
	}
	if len(res) != 3 {
		return pkgcache.RateDecision{}, fmt.Errorf("token bucket %s: unexpected reply %v", key, res)
	}

	return pkgcache.RateDecision{
		Allowed:    res[0] == 1,
		Limit:      tb.burst,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
