// Package invalidate signals that cached views of journal data went stale.
package invalidate

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// DashboardView is the view listing collections and recent entries.
const DashboardView = "/dashboard"

// EntryView names the view of a single entry.
func EntryView(id uuid.UUID) string { return "/journal/" + id.String() }

// CollectionView names the view of a collection; "unorganized" for a nil id.
func CollectionView(id *uuid.UUID) string {
	if id == nil {
		return "/collection/unorganized"
	}
	return "/collection/" + id.String()
}

// Invalidator issues view-refresh signals after successful mutations.
type Invalidator interface {
	Invalidate(ctx context.Context, views ...string) error
}

// Log records invalidations without delivering them anywhere.
type Log struct{ log *zap.Logger }

// NewLog constructs a logging invalidator.
func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

// Invalidate logs the views.
func (l *Log) Invalidate(_ context.Context, views ...string) error {
	l.log.Debug("invalidate", zap.Strings("views", views))
	return nil
}

// Multi fans an invalidation out to every wrapped invalidator.
type Multi []Invalidator

// Invalidate calls each invalidator and joins their errors.
func (m Multi) Invalidate(ctx context.Context, views ...string) error {
	var all []error
	for _, inv := range m {
		if err := inv.Invalidate(ctx, views...); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
