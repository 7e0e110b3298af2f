// Package quote serves the daily writing prompt with a time-based cache.
package quote

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CacheKey is the fixed key of the cached prompt.
const CacheKey = "daily-prompt"

// Fallback is served when the source is unavailable.
const Fallback = "What's on your mind?"

// DefaultTTL is the revalidation window of the cached prompt.
const DefaultTTL = 24 * time.Hour

// Source fetches a fresh prompt.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Provider caches one prompt until it expires or is invalidated.
type Provider struct {
	src Source
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

// NewProvider constructs a Provider; ttl <= 0 means DefaultTTL.
func NewProvider(src Source, ttl time.Duration, log *zap.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{src: src, ttl: ttl, log: log, now: time.Now}
}

// Get returns the cached prompt, refreshing it when expired.
// It never fails: source errors yield Fallback, which is not cached.
func (p *Provider) Get(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.value != "" && now.Before(p.expiresAt) {
		return p.value
	}

	v, err := p.src.Fetch(ctx)
	if err != nil || v == "" {
		p.log.Warn("quote fetch failed", zap.String("key", CacheKey), zap.Error(err))
		return Fallback
	}
	p.value = v
	p.expiresAt = now.Add(p.ttl)
	return v
}

// Invalidate drops the cached prompt; the next Get refetches.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.value = ""
	p.expiresAt = time.Time{}
	p.mu.Unlock()
	p.log.Info("quote invalidated", zap.String("key", CacheKey))
}
