package repository

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DraftRepository keeps at most one draft per user. Drafts are removed by
// EntryRepository.CreatePublishing.
type DraftRepository interface {
	// GetByUser returns the user's draft or nil when there is none.
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Draft, error)
	// Upsert creates or overwrites the user's draft.
	Upsert(ctx context.Context, userID uuid.UUID, in model.DraftInput) (*model.Draft, error)
}
