package limiter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed fixed-window limiter with abuse lockout.
type PG struct {
	pool   pgxQuerier
	policy Policy
	now    func() time.Time
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(pool *pgxpool.Pool, p Policy) *PG {
	return NewPGWithQuerier(pool, p)
}

// NewPGWithQuerier constructs a PostgreSQL-backed limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, p Policy) *PG {
	return &PG{pool: q, policy: p, now: time.Now}
}

// Protect charges requested units to key within the current window.
func (l *PG) Protect(ctx context.Context, key string, requested int64) (Decision, error) {
	const q = `
INSERT INTO rate_limits (key, hits, window_start, blocked_until, updated_at)
VALUES ($1, $2, now(), 'epoch', now())
ON CONFLICT (key) DO UPDATE
SET
  hits = CASE WHEN now() - rate_limits.window_start > $3::interval THEN $2 ELSE rate_limits.hits + $2 END,
  window_start = CASE WHEN now() - rate_limits.window_start > $3::interval THEN now() ELSE rate_limits.window_start END,
  updated_at = now()
RETURNING hits, window_start, blocked_until`

	var (
		hits         int64
		windowStart  time.Time
		blockedUntil time.Time
	)
	if err := l.pool.QueryRow(ctx, q, key, requested, l.policy.Window).Scan(&hits, &windowStart, &blockedUntil); err != nil {
		return Decision{}, err
	}

	now := l.now()
	if blockedUntil.After(now) {
		return Decision{Allowed: false, Reason: ReasonOther, Reset: blockedUntil.Sub(now)}, nil
	}

	if l.policy.blocks(hits) {
		until := now.Add(l.policy.BlockFor)
		const upd = `UPDATE rate_limits SET blocked_until=$2 WHERE key=$1`
		if _, err := l.pool.Exec(ctx, upd, key, until); err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: false, Reason: ReasonOther, Reset: l.policy.BlockFor}, nil
	}

	return l.policy.decide(hits, windowStart.Add(l.policy.Window).Sub(now)), nil
}
