package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/image"
	"github.com/TariqKichawele/Reflect/internal/invalidate"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
	"github.com/TariqKichawele/Reflect/internal/repository"
	"github.com/TariqKichawele/Reflect/internal/result"
)

// JournalService defines entry and draft actions.
//
// Entry actions fail with an error. ListEntries and the draft actions
// never fail: they report failures inside the returned Result.
type JournalService interface {
	// CreateEntry publishes a new entry and supersedes the caller's draft.
	CreateEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error)
	// UpdateEntry rewrites an entry; the image is refetched only on mood change.
	UpdateEntry(ctx context.Context, id uuid.UUID, in model.EntryInput) (*model.Entry, error)
	// DeleteEntry removes an entry.
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	// GetEntry returns one entry with mood metadata.
	GetEntry(ctx context.Context, id uuid.UUID) (*model.EntryView, error)
	// ListEntries returns entries matching the filter.
	ListEntries(ctx context.Context, f model.EntryFilter) result.Result[[]model.EntryView]
	// GetDraft returns the caller's draft; nil data when there is none.
	GetDraft(ctx context.Context) result.Result[*model.Draft]
	// SaveDraft creates or overwrites the caller's draft.
	SaveDraft(ctx context.Context, in model.DraftInput) result.Result[model.Draft]
	// MoodImage previews the illustrative image of a mood.
	MoodImage(ctx context.Context, moodID string) (string, error)
}

type JournalServiceImpl struct {
	guard       *Guard
	entries     repository.EntryRepository
	drafts      repository.DraftRepository
	collections repository.CollectionRepository
	images      image.Fetcher
	inv         invalidate.Invalidator
	log         *zap.Logger
}

// NewJournalService constructs JournalService with its collaborators.
func NewJournalService(
	guard *Guard,
	entries repository.EntryRepository,
	drafts repository.DraftRepository,
	collections repository.CollectionRepository,
	images image.Fetcher,
	inv invalidate.Invalidator,
	log *zap.Logger,
) *JournalServiceImpl {
	return &JournalServiceImpl{
		guard:       guard,
		entries:     entries,
		drafts:      drafts,
		collections: collections,
		images:      images,
		inv:         inv,
		log:         log,
	}
}

func validateEntry(in model.EntryInput) (mood.Mood, error) {
	if strings.TrimSpace(in.Title) == "" {
		return mood.Mood{}, errs.Invalid("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return mood.Mood{}, errs.Invalid("content is required")
	}
	m, ok := mood.ByName(in.Mood)
	if !ok {
		return mood.Mood{}, errs.ErrInvalidMood
	}
	return m, nil
}

// checkCollection verifies that a referenced collection belongs to the user.
func (s *JournalServiceImpl) checkCollection(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.collections.GetByID(ctx, userID, *id)
	return storeErr(err, errs.ErrCollectionNotFound)
}

// fetchImage returns "" when the image service fails.
func (s *JournalServiceImpl) fetchImage(ctx context.Context, query string) string {
	u, err := s.images.Fetch(ctx, query)
	if err != nil {
		s.log.Warn("image fetch failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	return u
}

func imageQuery(in model.EntryInput, m mood.Mood) string {
	if q := strings.TrimSpace(in.MoodQuery); q != "" {
		return q
	}
	return m.PixabayQuery
}

func (s *JournalServiceImpl) invalidate(ctx context.Context, views ...string) {
	if err := s.inv.Invalidate(ctx, views...); err != nil {
		s.log.Warn("invalidate failed", zap.Strings("views", views), zap.Error(err))
	}
}

// CreateEntry validates mood, fetches an image and persists the entry
// together with the draft deletion.
func (s *JournalServiceImpl) CreateEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	e, err := s.createEntry(ctx, in)
	if err != nil {
		logFail(s.log, "create entry", err)
		return nil, err
	}
	return e, nil
}

func (s *JournalServiceImpl) createEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	u, err := s.guard.caller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := validateEntry(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkCollection(ctx, u.ID, in.CollectionID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	e := &model.Entry{
		ID:           id,
		UserID:       u.ID,
		CollectionID: in.CollectionID,
		Title:        in.Title,
		Content:      in.Content,
		Mood:         m.ID,
		MoodScore:    m.Score,
		MoodImageURL: s.fetchImage(ctx, imageQuery(in, m)),
	}
	if err := s.entries.CreatePublishing(ctx, e); err != nil {
		return nil, storeErr(err, nil)
	}

	s.invalidate(ctx, invalidate.DashboardView, invalidate.CollectionView(e.CollectionID))
	s.log.Info("entry created", zap.String("entry_id", e.ID.String()), zap.String("mood", e.Mood))
	return e, nil
}

// UpdateEntry re-validates mood and leaves the draft untouched.
func (s *JournalServiceImpl) UpdateEntry(ctx context.Context, id uuid.UUID, in model.EntryInput) (*model.Entry, error) {
	e, err := s.updateEntry(ctx, id, in)
	if err != nil {
		logFail(s.log, "update entry", err)
		return nil, err
	}
	return e, nil
}

func (s *JournalServiceImpl) updateEntry(ctx context.Context, id uuid.UUID, in model.EntryInput) (*model.Entry, error) {
	u, err := s.guard.caller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := validateEntry(in)
	if err != nil {
		return nil, err
	}
	cur, err := s.entries.GetByID(ctx, u.ID, id)
	if err != nil {
		return nil, storeErr(err, errs.ErrEntryNotFound)
	}
	if err := s.checkCollection(ctx, u.ID, in.CollectionID); err != nil {
		return nil, err
	}

	img := cur.MoodImageURL
	if cur.Mood != m.ID {
		img = s.fetchImage(ctx, imageQuery(in, m))
	}
	e := &model.Entry{
		ID:           id,
		UserID:       u.ID,
		CollectionID: in.CollectionID,
		Title:        in.Title,
		Content:      in.Content,
		Mood:         m.ID,
		MoodScore:    m.Score,
		MoodImageURL: img,
	}
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, storeErr(err, errs.ErrEntryNotFound)
	}

	views := []string{invalidate.DashboardView, invalidate.EntryView(id), invalidate.CollectionView(e.CollectionID)}
	if !sameCollection(cur.CollectionID, e.CollectionID) {
		views = append(views, invalidate.CollectionView(cur.CollectionID))
	}
	s.invalidate(ctx, views...)
	return e, nil
}

func sameCollection(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DeleteEntry removes an entry owned by the caller.
func (s *JournalServiceImpl) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	err := s.deleteEntry(ctx, id)
	if err != nil {
		logFail(s.log, "delete entry", err)
	}
	return err
}

func (s *JournalServiceImpl) deleteEntry(ctx context.Context, id uuid.UUID) error {
	u, err := s.guard.caller(ctx)
	if err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, u.ID, id); err != nil {
		return storeErr(err, errs.ErrEntryNotFound)
	}
	s.invalidate(ctx, invalidate.DashboardView, invalidate.EntryView(id))
	return nil
}

// GetEntry returns an entry with its collection and mood data.
func (s *JournalServiceImpl) GetEntry(ctx context.Context, id uuid.UUID) (*model.EntryView, error) {
	u, err := s.guard.caller(ctx)
	if err == nil {
		var e *model.Entry
		e, err = s.entries.GetByID(ctx, u.ID, id)
		if err == nil {
			v := view(*e)
			return &v, nil
		}
		err = storeErr(err, errs.ErrEntryNotFound)
	}
	logFail(s.log, "get entry", err)
	return nil, err
}

func view(e model.Entry) model.EntryView {
	v := model.EntryView{Entry: e}
	if m, ok := mood.ByID(e.Mood); ok {
		v.MoodData = &m
	}
	return v
}

// ListEntries returns the caller's entries, each annotated with mood data.
func (s *JournalServiceImpl) ListEntries(ctx context.Context, f model.EntryFilter) result.Result[[]model.EntryView] {
	u, err := s.guard.caller(ctx)
	if err != nil {
		logFail(s.log, "list entries", err)
		return result.Fail[[]model.EntryView](errs.Message(err))
	}
	entries, err := s.entries.List(ctx, u.ID, f)
	if err != nil {
		err = storeErr(err, nil)
		logFail(s.log, "list entries", err)
		return result.Fail[[]model.EntryView](errs.Message(err))
	}
	out := make([]model.EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, view(e))
	}
	return result.Ok(out)
}

// GetDraft returns the caller's draft or nil data.
func (s *JournalServiceImpl) GetDraft(ctx context.Context) result.Result[*model.Draft] {
	u, err := s.guard.caller(ctx)
	if err != nil {
		logFail(s.log, "get draft", err)
		return result.Fail[*model.Draft](errs.Message(err))
	}
	d, err := s.drafts.GetByUser(ctx, u.ID)
	if err != nil {
		err = storeErr(err, nil)
		logFail(s.log, "get draft", err)
		return result.Fail[*model.Draft](errs.Message(err))
	}
	return result.Ok(d)
}

// SaveDraft upserts the caller's single draft.
func (s *JournalServiceImpl) SaveDraft(ctx context.Context, in model.DraftInput) result.Result[model.Draft] {
	u, err := s.guard.caller(ctx)
	if err != nil {
		logFail(s.log, "save draft", err)
		return result.Fail[model.Draft](errs.Message(err))
	}
	d, err := s.drafts.Upsert(ctx, u.ID, in)
	if err != nil {
		err = storeErr(err, nil)
		logFail(s.log, "save draft", err)
		return result.Fail[model.Draft](errs.Message(err))
	}
	s.invalidate(ctx, invalidate.DashboardView)
	return result.Ok(*d)
}

// MoodImage resolves the catalog query of a mood into an image URL.
func (s *JournalServiceImpl) MoodImage(ctx context.Context, moodID string) (string, error) {
	if _, err := s.guard.identify(ctx); err != nil {
		return "", err
	}
	m, ok := mood.ByName(moodID)
	if !ok {
		return "", errs.ErrInvalidMood
	}
	return s.fetchImage(ctx, m.PixabayQuery), nil
}
