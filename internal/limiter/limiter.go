// Package limiter defines the abuse/rate protection boundary and its backends.
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Reason explains a denial.
type Reason int

const (
	// ReasonNone accompanies allowed decisions.
	ReasonNone Reason = iota
	// ReasonRateLimit means the quota of the current window is exhausted.
	ReasonRateLimit
	// ReasonOther means the key is blocked for another reason (sustained abuse).
	ReasonOther
)

func (r Reason) String() string {
	switch r {
	case ReasonRateLimit:
		return "rate_limit"
	case ReasonOther:
		return "other"
	default:
		return "none"
	}
}

// Decision is the outcome of a Protect call.
type Decision struct {
	Allowed   bool
	Reason    Reason
	Remaining int64         // units left in the window
	Reset     time.Duration // until the window (or block) ends
}

// Limiter spends request units for a key.
type Limiter interface {
	// Protect charges requested units to key and reports whether the call may proceed.
	Protect(ctx context.Context, key string, requested int64) (Decision, error)
}

// Policy configures a fixed-window limiter with an abuse block.
type Policy struct {
	Window     time.Duration // window length
	Max        int64         // units allowed per window
	BlockAfter int64         // hits in one window that trigger a block; <= Max disables
	BlockFor   time.Duration // block length
}

// DefaultPolicy mirrors the production quota.
func DefaultPolicy() Policy {
	return Policy{Window: time.Minute, Max: 30, BlockAfter: 120, BlockFor: 15 * time.Minute}
}

func (p Policy) blocks(hits int64) bool {
	return p.BlockAfter > p.Max && hits >= p.BlockAfter
}

func (p Policy) decide(hits int64, reset time.Duration) Decision {
	if reset < 0 {
		reset = 0
	}
	if hits > p.Max {
		return Decision{Allowed: false, Reason: ReasonRateLimit, Remaining: 0, Reset: reset}
	}
	return Decision{Allowed: true, Remaining: p.Max - hits, Reset: reset}
}

// HashKey returns a stable hex digest for an identity to avoid storing it raw.
func HashKey(identity string) string {
	h := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(h[:])
}
