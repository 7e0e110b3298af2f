package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitKeyPrefix prefixes per-key window counters.
	RateLimitKeyPrefix = "reflect:ratelimit:"
	// BlockedKeyPrefix prefixes keys blocked for sustained abuse.
	BlockedKeyPrefix = "reflect:blocked:"

	// noExpiry is what TTL reports for a key without a timeout.
	noExpiry = time.Duration(-1)
)

// Redis is a fixed-window limiter on INCRBY + EXPIRE with a separate block key.
type Redis struct {
	rdb    redis.Cmdable
	policy Policy
}

// NewRedis constructs a Redis-backed limiter.
func NewRedis(rdb redis.Cmdable, p Policy) *Redis {
	return &Redis{rdb: rdb, policy: p}
}

// Protect charges requested units to key within the current window.
func (l *Redis) Protect(ctx context.Context, key string, requested int64) (Decision, error) {
	blockedKey := BlockedKeyPrefix + key
	blocked, err := l.rdb.Exists(ctx, blockedKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if blocked > 0 {
		ttl, err := l.rdb.TTL(ctx, blockedKey).Result()
		if err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: false, Reason: ReasonOther, Reset: l.ttlOr(ttl, l.policy.BlockFor)}, nil
	}

	counterKey := RateLimitKeyPrefix + key
	hits, err := l.rdb.IncrBy(ctx, counterKey, requested).Result()
	if err != nil {
		return Decision{}, err
	}
	if hits == requested {
		// first hit opens the window
		if err := l.rdb.Expire(ctx, counterKey, l.policy.Window).Err(); err != nil {
			return Decision{}, err
		}
	}
	ttl, err := l.rdb.TTL(ctx, counterKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl == noExpiry {
		// the opening EXPIRE was lost; without a TTL the window never resets
		if err := l.rdb.Expire(ctx, counterKey, l.policy.Window).Err(); err != nil {
			return Decision{}, err
		}
		ttl = l.policy.Window
	}

	if l.policy.blocks(hits) {
		if err := l.rdb.Set(ctx, blockedKey, "1", l.policy.BlockFor).Err(); err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: false, Reason: ReasonOther, Reset: l.policy.BlockFor}, nil
	}
	return l.policy.decide(hits, l.ttlOr(ttl, l.policy.Window)), nil
}

// ttlOr maps the negative TTL sentinels (no expiry / missing key) to def.
func (l *Redis) ttlOr(ttl, def time.Duration) time.Duration {
	if ttl < 0 {
		return def
	}
	return ttl
}
