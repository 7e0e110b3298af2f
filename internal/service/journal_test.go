package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/TariqKichawele/Reflect/internal/auth"
	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/invalidate"
	"github.com/TariqKichawele/Reflect/internal/limiter"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
)

func TestGuard_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.journal.CreateEntry(context.Background(), entryIn("t", "happy", nil))
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Zero(t, f.lim.calls)

	res := f.journal.ListEntries(context.Background(), model.EntryFilter{})
	require.False(t, res.Success())
	require.Equal(t, "Unauthorized", res.Error())
}

func TestGuard_RateLimited(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.lim.dec = limiter.Decision{Allowed: false, Reason: limiter.ReasonRateLimit, Remaining: 0, Reset: 42 * time.Second}

	_, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.ErrorIs(t, err, errs.ErrRateLimited)
	require.False(t, errors.Is(err, errs.ErrUnauthorized))

	var rl *errs.RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 42*time.Second, rl.Reset)
	require.Equal(t, "Rate limit exceeded", errs.Message(err))

	res := f.journal.SaveDraft(f.ctx, model.DraftInput{Title: "x"})
	require.False(t, res.Success())
	require.Equal(t, "Rate limit exceeded", res.Error())

	require.Equal(t, limiter.HashKey("ext|alice"), f.lim.keys[0])
	require.Empty(t, f.store.entries)
}

func TestGuard_OtherDenialIsUnauthorized(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.lim.dec = limiter.Decision{Allowed: false, Reason: limiter.ReasonOther}

	_, err := f.journal.GetEntry(f.ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestGuard_LimiterErrorFailsOpen(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.lim.err = errors.New("redis down")

	e, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestGuard_UnknownUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{Subject: "ext|nobody"})

	_, err := f.journal.CreateEntry(ctx, entryIn("t", "happy", nil))
	require.ErrorIs(t, err, errs.ErrUserNotFound)
	require.Equal(t, "User not found", errs.Message(err))
}

func TestCreateEntry_InvalidMoodRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.journal.CreateEntry(f.ctx, entryIn("t", "ecstatic", nil))
	require.ErrorIs(t, err, errs.ErrInvalidMood)
	require.Empty(t, f.store.entries)
	require.Empty(t, f.images.queries)
	require.Empty(t, f.inv.views)
}

func TestCreateEntry_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.journal.CreateEntry(f.ctx, model.EntryInput{Content: "c", Mood: "happy"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	require.Equal(t, "title is required", errs.Message(err))
}

func TestCreateEntry_ScoreImageAndDraftSupersession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	saved := f.journal.SaveDraft(f.ctx, model.DraftInput{Title: "A", Content: "B", Mood: "happy"})
	require.True(t, saved.Success())

	e, err := f.journal.CreateEntry(f.ctx, model.EntryInput{Title: "A", Content: "B", Mood: "HAPPY"})
	require.NoError(t, err)

	happy, _ := mood.ByID("happy")
	require.Equal(t, happy.Score, e.MoodScore)
	require.Equal(t, "happy", e.Mood)
	require.Equal(t, "https://img/mood.png", e.MoodImageURL)
	require.Equal(t, []string{happy.PixabayQuery}, f.images.queries)
	require.Contains(t, f.inv.all(), invalidate.DashboardView)

	d := f.journal.GetDraft(f.ctx)
	require.True(t, d.Success())
	require.Nil(t, d.Data())

	// publishing with no draft left must not fail
	_, err = f.journal.CreateEntry(f.ctx, model.EntryInput{Title: "again", Content: "x", Mood: "sad"})
	require.NoError(t, err)
	require.Empty(t, f.store.drafts)

	got, err := f.journal.GetEntry(f.ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, happy.Score, got.MoodScore)
	require.NotNil(t, got.MoodData)
	require.Equal(t, "Happy", got.MoodData.Label)
}

func TestCreateEntry_ClientQueryWins(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	in := entryIn("t", "happy", nil)
	in.MoodQuery = "custom query"
	_, err := f.journal.CreateEntry(f.ctx, in)
	require.NoError(t, err)
	require.Equal(t, []string{"custom query"}, f.images.queries)
}

func TestCreateEntry_ImageFailureStillCreates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.images.err = errors.New("pixabay 500")

	e, err := f.journal.CreateEntry(f.ctx, entryIn("t", "tired", nil))
	require.NoError(t, err)
	require.Empty(t, e.MoodImageURL)
}

func TestCreateEntry_InvalidationFailureDoesNotFail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.inv.err = errors.New("publish failed")

	_, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.NoError(t, err)
	require.Len(t, f.store.entries, 1)
}

func TestCreateEntry_ForeignCollection(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	other := uuid.Must(uuid.NewV4())
	f.store.collections[other] = model.Collection{ID: other, UserID: uuid.Must(uuid.NewV4()), Name: "not mine"}

	_, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", &other))
	require.ErrorIs(t, err, errs.ErrCollectionNotFound)
	require.Empty(t, f.store.entries)
}

func TestCreateEntry_PersistenceFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.failWith = errors.New("connection reset")

	_, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.Equal(t, "Something went wrong", errs.Message(err))
	require.Empty(t, f.inv.views)

	res := f.journal.ListEntries(f.ctx, model.EntryFilter{})
	require.False(t, res.Success())
	require.Equal(t, "Something went wrong", res.Error())

	d := f.journal.GetDraft(f.ctx)
	require.False(t, d.Success())
}

func TestUpdateEntry_ImageFetchOnlyOnMoodChange(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	e, err := f.journal.CreateEntry(f.ctx, entryIn("first", "happy", nil))
	require.NoError(t, err)
	// a draft for the next entry; updates must leave it alone
	f.journal.SaveDraft(f.ctx, model.DraftInput{Title: "pending"})
	f.images.queries = nil
	f.images.url = "https://img/new.png"

	same, err := f.journal.UpdateEntry(f.ctx, e.ID, entryIn("renamed", "happy", nil))
	require.NoError(t, err)
	require.Empty(t, f.images.queries)
	require.Equal(t, "https://img/mood.png", same.MoodImageURL)
	require.Equal(t, "renamed", same.Title)

	changed, err := f.journal.UpdateEntry(f.ctx, e.ID, entryIn("renamed", "sad", nil))
	require.NoError(t, err)
	require.Len(t, f.images.queries, 1)
	require.Equal(t, "https://img/new.png", changed.MoodImageURL)
	sad, _ := mood.ByID("sad")
	require.Equal(t, sad.Score, changed.MoodScore)

	require.Contains(t, f.inv.all(), invalidate.EntryView(e.ID))
	require.Len(t, f.store.drafts, 1)
}

func TestUpdateEntry_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.journal.UpdateEntry(f.ctx, uuid.Must(uuid.NewV4()), entryIn("t", "happy", nil))
	require.ErrorIs(t, err, errs.ErrEntryNotFound)

	e, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.NoError(t, err)
	_, err = f.journal.UpdateEntry(f.ctx, e.ID, entryIn("t", "unknown", nil))
	require.ErrorIs(t, err, errs.ErrInvalidMood)
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	e, err := f.journal.CreateEntry(f.ctx, entryIn("t", "happy", nil))
	require.NoError(t, err)
	require.NoError(t, f.journal.DeleteEntry(f.ctx, e.ID))
	require.ErrorIs(t, f.journal.DeleteEntry(f.ctx, e.ID), errs.ErrEntryNotFound)

	_, err = f.journal.GetEntry(f.ctx, e.ID)
	require.ErrorIs(t, err, errs.ErrEntryNotFound)
}

func TestListEntries_Filters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	c := f.collection(t, "Work")
	loose1, err := f.journal.CreateEntry(f.ctx, entryIn("loose 1", "happy", nil))
	require.NoError(t, err)
	_, err = f.journal.CreateEntry(f.ctx, entryIn("filed", "proud", &c.ID))
	require.NoError(t, err)
	loose2, err := f.journal.CreateEntry(f.ctx, entryIn("loose 2", "sad", nil))
	require.NoError(t, err)

	res := f.journal.ListEntries(f.ctx, model.EntryFilter{Collection: model.UnorganizedEntries(), Order: model.OrderAsc})
	require.True(t, res.Success())
	got := res.Data()
	require.Len(t, got, 2)
	require.Equal(t, loose1.ID, got[0].ID)
	require.Equal(t, loose2.ID, got[1].ID)
	require.Equal(t, "Sad", got[1].MoodData.Label)

	desc := f.journal.ListEntries(f.ctx, model.EntryFilter{Collection: model.UnorganizedEntries(), Order: model.OrderDesc})
	require.Equal(t, loose2.ID, desc.Data()[0].ID)

	all := f.journal.ListEntries(f.ctx, model.EntryFilter{Collection: model.AllEntries()})
	require.Len(t, all.Data(), 3)

	in := f.journal.ListEntries(f.ctx, model.EntryFilter{Collection: model.InCollection(c.ID)})
	require.Len(t, in.Data(), 1)
	require.Equal(t, "filed", in.Data()[0].Title)
}

func TestSaveDraft_Upserts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	first := f.journal.SaveDraft(f.ctx, model.DraftInput{Title: "one"})
	require.True(t, first.Success())
	second := f.journal.SaveDraft(f.ctx, model.DraftInput{Title: "two", Mood: "calm"})
	require.True(t, second.Success())

	require.Len(t, f.store.drafts, 1)
	require.Equal(t, first.Data().ID, second.Data().ID)

	d := f.journal.GetDraft(f.ctx)
	require.True(t, d.Success())
	require.Equal(t, "two", d.Data().Title)
}

func TestMoodImage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	u, err := f.journal.MoodImage(f.ctx, "peaceful")
	require.NoError(t, err)
	require.Equal(t, "https://img/mood.png", u)

	_, err = f.journal.MoodImage(f.ctx, "nope")
	require.ErrorIs(t, err, errs.ErrInvalidMood)

	_, err = f.journal.MoodImage(context.Background(), "happy")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}
