package postgres

import (
	"context"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// EntryRepo implements EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

const entrySelect = `
SELECT e.id, e.user_id, e.collection_id, c.name, e.title, e.content, e.mood, e.mood_score,
       COALESCE(e.mood_image_url, ''), e.created_at, e.updated_at
FROM entries e
LEFT JOIN collections c ON c.id = e.collection_id`

// CreatePublishing inserts the entry and removes the author's draft in the same transaction.
func (r *EntryRepo) CreatePublishing(ctx context.Context, e *model.Entry) error {
	const ins = `
INSERT INTO entries (id, user_id, collection_id, title, content, mood, mood_score, mood_image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
RETURNING created_at, updated_at`
	const delDraft = `DELETE FROM drafts WHERE user_id=$1`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, ins,
			e.ID, e.UserID, e.CollectionID, e.Title, e.Content, e.Mood, e.MoodScore, e.MoodImageURL,
		).Scan(&e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return errs.ErrAlreadyExists
			}
			return err
		}
		// zero rows is fine: publishing without a draft
		_, err = tx.Exec(ctx, delDraft, e.UserID)
		return err
	})
}

// Update rewrites an entry owned by e.UserID.
func (r *EntryRepo) Update(ctx context.Context, e *model.Entry) error {
	const q = `
UPDATE entries
SET collection_id=$3, title=$4, content=$5, mood=$6, mood_score=$7,
    mood_image_url=NULLIF($8, ''), updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q,
		e.ID, e.UserID, e.CollectionID, e.Title, e.Content, e.Mood, e.MoodScore, e.MoodImageURL,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return noRows(err)
}

// GetByID returns an entry with its collection reference.
func (r *EntryRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Entry, error) {
	row := r.db.Pool.QueryRow(ctx, entrySelect+` WHERE e.id=$1 AND e.user_id=$2`, id, userID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, noRows(err)
	}
	return e, nil
}

// Delete removes an entry owned by userID.
func (r *EntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM entries WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List returns the user's entries matching the collection filter, ordered by creation time.
func (r *EntryRepo) List(ctx context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	q := entrySelect + ` WHERE e.user_id=$1`
	args := []any{userID}
	switch f.Collection.Kind {
	case model.FilterUnorganized:
		q += ` AND e.collection_id IS NULL`
	case model.FilterByID:
		q += ` AND e.collection_id=$2`
		args = append(args, f.Collection.ID)
	}
	if f.Order == model.OrderAsc {
		q += ` ORDER BY e.created_at ASC`
	} else {
		q += ` ORDER BY e.created_at DESC`
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*model.Entry, error) {
	var (
		e     model.Entry
		cname *string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &e.CollectionID, &cname, &e.Title, &e.Content, &e.Mood, &e.MoodScore,
		&e.MoodImageURL, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if e.CollectionID != nil && cname != nil {
		e.Collection = &model.CollectionRef{ID: *e.CollectionID, Name: *cname}
	}
	return &e, nil
}
