// Package service contains the journal mutation actions.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/auth"
	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/limiter"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/repository"
)

// Guard runs the preconditions shared by every action:
// caller identity, rate check, internal user resolution.
type Guard struct {
	users repository.UserRepository
	lim   limiter.Limiter
	log   *zap.Logger
}

// NewGuard constructs a Guard.
func NewGuard(users repository.UserRepository, lim limiter.Limiter, log *zap.Logger) *Guard {
	return &Guard{users: users, lim: lim, log: log}
}

// identify returns the caller after charging one unit against its quota.
func (g *Guard) identify(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromCtx(ctx)
	if !ok {
		return auth.Identity{}, errs.ErrUnauthorized
	}

	d, err := g.lim.Protect(ctx, limiter.HashKey(id.Subject), 1)
	if err != nil {
		// fail open: the limiter backend is not a reason to reject users
		g.log.Warn("rate check unavailable", zap.Error(err))
		return id, nil
	}
	if d.Allowed {
		return id, nil
	}
	if d.Reason == limiter.ReasonRateLimit {
		g.log.Warn("rate limit exceeded",
			zap.String("code", "RATE_LIMIT_EXCEEDED"),
			zap.Int64("remaining", d.Remaining),
			zap.Float64("reset_in_seconds", d.Reset.Seconds()),
		)
		return auth.Identity{}, &errs.RateLimitError{Remaining: d.Remaining, Reset: d.Reset}
	}
	g.log.Warn("request denied", zap.String("reason", d.Reason.String()))
	return auth.Identity{}, errs.ErrUnauthorized
}

// caller resolves the internal user behind the request.
func (g *Guard) caller(ctx context.Context) (*model.User, error) {
	id, err := g.identify(ctx)
	if err != nil {
		return nil, err
	}
	u, err := g.users.GetByExternalID(ctx, id.Subject)
	if err != nil {
		return nil, storeErr(err, errs.ErrUserNotFound)
	}
	return u, nil
}

// storeErr maps repository failures into the error taxonomy.
// notFound, when non-nil, replaces a generic ErrNotFound.
func storeErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrNotFound):
		if notFound != nil {
			return notFound
		}
		return err
	case errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", errs.ErrPersistence, err)
	}
}

// logFail records a failed action with its error kind.
func logFail(log *zap.Logger, op string, err error) {
	kind := errs.Kind(err)
	switch kind {
	case "persistence", "internal":
		log.Error(op, zap.String("kind", kind), zap.Error(err))
	default:
		log.Info(op, zap.String("kind", kind), zap.Error(err))
	}
}
