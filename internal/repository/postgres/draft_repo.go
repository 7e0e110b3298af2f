package postgres

import (
	"context"
	"errors"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DraftRepo implements DraftRepository using PostgreSQL.
type DraftRepo struct{ db *DB }

// NewDraftRepo constructs a draft repository.
func NewDraftRepo(db *DB) *DraftRepo { return &DraftRepo{db: db} }

// GetByUser returns the user's draft, or nil when none is stored.
func (r *DraftRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Draft, error) {
	const q = `
SELECT id, user_id, title, content, mood, created_at, updated_at
FROM drafts WHERE user_id=$1`
	var d model.Draft
	err := r.db.Pool.QueryRow(ctx, q, userID).
		Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.Mood, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Upsert writes the user's draft; the unique user_id keeps a single row per user.
func (r *DraftRepo) Upsert(ctx context.Context, userID uuid.UUID, in model.DraftInput) (*model.Draft, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO drafts (id, user_id, title, content, mood)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id)
DO UPDATE SET title=EXCLUDED.title, content=EXCLUDED.content, mood=EXCLUDED.mood, updated_at=now()
RETURNING id, user_id, title, content, mood, created_at, updated_at`
	var d model.Draft
	err = r.db.Pool.QueryRow(ctx, q, id, userID, in.Title, in.Content, in.Mood).
		Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.Mood, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

