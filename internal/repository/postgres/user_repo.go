package postgres

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row and fills CreatedAt.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, external_id, email, name, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.ExternalID, u.Email, u.Name, u.ImageURL).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, external_id, email, name, image_url, created_at
FROM users WHERE id=$1`
	return r.scanOne(ctx, q, id)
}

// GetByExternalID selects a user by the identity provider subject.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	const q = `
SELECT id, external_id, email, name, image_url, created_at
FROM users WHERE external_id=$1`
	return r.scanOne(ctx, q, externalID)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.ImageURL, &u.CreatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &u, nil
}
