package postgres

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// CollectionRepo implements CollectionRepository using PostgreSQL.
type CollectionRepo struct{ db *DB }

// NewCollectionRepo constructs a collection repository.
func NewCollectionRepo(db *DB) *CollectionRepo { return &CollectionRepo{db: db} }

// Create inserts a collection row.
func (r *CollectionRepo) Create(ctx context.Context, c *model.Collection) error {
	const q = `
INSERT INTO collections (id, user_id, name, description)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, c.ID, c.UserID, c.Name, c.Description).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a collection by id scoped to its owner.
func (r *CollectionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Collection, error) {
	const q = `
SELECT id, user_id, name, description, created_at, updated_at
FROM collections WHERE id=$1 AND user_id=$2`
	var c model.Collection
	err := r.db.Pool.QueryRow(ctx, q, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &c, nil
}

// ListByUser returns the user's collections ordered by creation time, newest first.
func (r *CollectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Collection, error) {
	const q = `
SELECT id, user_id, name, description, created_at, updated_at
FROM collections
WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Collection{}
	for rows.Next() {
		var c model.Collection
		if err = rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete moves the collection's entries to unorganized, then removes the collection.
func (r *CollectionRepo) Delete(ctx context.Context, userID, id uuid.UUID) (detached int64, err error) {
	const detach = `UPDATE entries SET collection_id=NULL, updated_at=now() WHERE collection_id=$1 AND user_id=$2`
	const del = `DELETE FROM collections WHERE id=$1 AND user_id=$2`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, detach, id, userID)
		if err != nil {
			return err
		}
		detached = tag.RowsAffected()

		tag, err = tx.Exec(ctx, del, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return detached, nil
}
