// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to users mirrored from the identity provider.
type UserRepository interface {
	// Create inserts a new user; ErrAlreadyExists on duplicate external id.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByExternalID loads a user by the provider subject.
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
}
