package repository

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CollectionRepository provides owner-scoped access to collections.
type CollectionRepository interface {
	// Create inserts a collection and fills its timestamps.
	Create(ctx context.Context, c *model.Collection) error
	// GetByID returns a collection owned by userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Collection, error)
	// ListByUser returns the user's collections, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Collection, error)
	// Delete detaches the collection's entries and removes it atomically.
	// It returns the number of detached entries.
	Delete(ctx context.Context, userID, id uuid.UUID) (int64, error)
}
