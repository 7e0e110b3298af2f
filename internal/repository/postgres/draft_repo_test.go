package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var draftCols = []string{"id", "user_id", "title", "content", "mood", "created_at", "updated_at"}

func TestDraftRepo_GetByUser_AbsentIsNil(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDraftRepo(db)
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, title, content, mood, created_at, updated_at FROM drafts WHERE user_id=\$1`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	d, err := r.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestDraftRepo_Upsert_TwiceKeepsOneRow(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDraftRepo(db)
	userID := uuid.Must(uuid.NewV4())
	draftID := uuid.Must(uuid.NewV4())
	created := time.Now().Add(-time.Minute)

	// both writes resolve to the same row id: the second one hits ON CONFLICT (user_id)
	for _, title := range []string{"A", "A2"} {
		mock.ExpectQuery(`INSERT INTO drafts \(id, user_id, title, content, mood\) VALUES \(\$1, \$2, \$3, \$4, \$5\) ON CONFLICT \(user_id\) DO UPDATE SET`).
			WithArgs(pgxmock.AnyArg(), userID, title, "B", "happy").
			WillReturnRows(pgxmock.NewRows(draftCols).AddRow(draftID, userID, title, "B", "happy", created, time.Now()))
	}

	d1, err := r.Upsert(context.Background(), userID, model.DraftInput{Title: "A", Content: "B", Mood: "happy"})
	require.NoError(t, err)
	d2, err := r.Upsert(context.Background(), userID, model.DraftInput{Title: "A2", Content: "B", Mood: "happy"})
	require.NoError(t, err)
	require.Equal(t, d1.ID, d2.ID)
	require.Equal(t, "A2", d2.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
