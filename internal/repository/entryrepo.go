package repository

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
)

// EntryRepository provides owner-scoped access to journal entries.
type EntryRepository interface {
	// CreatePublishing inserts the entry and deletes the owner's draft in one transaction.
	CreatePublishing(ctx context.Context, e *model.Entry) error
	// Update rewrites the mutable fields of an entry owned by e.UserID.
	Update(ctx context.Context, e *model.Entry) error
	// GetByID returns an entry with its collection reference.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Entry, error)
	// Delete removes an entry owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// List returns entries matching the filter in creation order.
	List(ctx context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error)
}
