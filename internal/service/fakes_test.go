package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/TariqKichawele/Reflect/internal/auth"
	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/image"
	"github.com/TariqKichawele/Reflect/internal/invalidate"
	"github.com/TariqKichawele/Reflect/internal/limiter"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/repository"
)

// memStore is an in-memory stand-in for the four tables.
type memStore struct {
	mu          sync.Mutex
	clock       time.Time
	users       map[uuid.UUID]model.User
	collections map[uuid.UUID]model.Collection
	entries     map[uuid.UUID]model.Entry
	drafts      map[uuid.UUID]model.Draft // by user

	failWith error // returned by every entry/draft call when set
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		users:       map[uuid.UUID]model.User{},
		collections: map[uuid.UUID]model.Collection{},
		entries:     map[uuid.UUID]model.Entry{},
		drafts:      map[uuid.UUID]model.Draft{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

type memUsers struct {
	*memStore
	createErr error
}

var _ repository.UserRepository = (*memUsers)(nil)

func (r *memUsers) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, x := range r.users {
		if x.ExternalID == u.ExternalID {
			return errs.ErrAlreadyExists
		}
	}
	u.CreatedAt = r.tick()
	r.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByExternalID(_ context.Context, ext string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == ext {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

type memCollections struct{ *memStore }

var _ repository.CollectionRepository = (*memCollections)(nil)

func (r *memCollections) Create(_ context.Context, c *model.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.CreatedAt = r.tick()
	c.UpdatedAt = c.CreatedAt
	r.collections[c.ID] = *c
	return nil
}

func (r *memCollections) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[id]
	if !ok || c.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (r *memCollections) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Collection
	for _, c := range r.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memCollections) Delete(_ context.Context, userID, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[id]
	if !ok || c.UserID != userID {
		return 0, errs.ErrNotFound
	}
	var n int64
	for k, e := range r.entries {
		if e.CollectionID != nil && *e.CollectionID == id && e.UserID == userID {
			e.CollectionID = nil
			r.entries[k] = e
			n++
		}
	}
	delete(r.collections, id)
	return n, nil
}

type memEntries struct{ *memStore }

var _ repository.EntryRepository = (*memEntries)(nil)

func (r *memEntries) CreatePublishing(_ context.Context, e *model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	e.CreatedAt = r.tick()
	e.UpdatedAt = e.CreatedAt
	r.entries[e.ID] = *e
	delete(r.drafts, e.UserID)
	return nil
}

func (r *memEntries) Update(_ context.Context, e *model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[e.ID]
	if !ok || cur.UserID != e.UserID {
		return errs.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = r.tick()
	r.entries[e.ID] = *e
	return nil
}

func (r *memEntries) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

func (r *memEntries) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return errs.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memEntries) List(_ context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []model.Entry
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		switch f.Collection.Kind {
		case model.FilterUnorganized:
			if e.CollectionID != nil {
				continue
			}
		case model.FilterByID:
			if e.CollectionID == nil || *e.CollectionID != f.Collection.ID {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Order == model.OrderAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memDrafts struct{ *memStore }

var _ repository.DraftRepository = (*memDrafts)(nil)

func (r *memDrafts) GetByUser(_ context.Context, userID uuid.UUID) (*model.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	d, ok := r.drafts[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memDrafts) Upsert(_ context.Context, userID uuid.UUID, in model.DraftInput) (*model.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	now := r.tick()
	d, ok := r.drafts[userID]
	if !ok {
		d = model.Draft{ID: uuid.Must(uuid.NewV4()), UserID: userID, CreatedAt: now}
	}
	d.Title, d.Content, d.Mood, d.UpdatedAt = in.Title, in.Content, in.Mood, now
	r.drafts[userID] = d
	return &d, nil
}

type fakeLimiter struct {
	dec   limiter.Decision
	err   error
	calls int
	keys  []string
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (f *fakeLimiter) Protect(_ context.Context, key string, requested int64) (limiter.Decision, error) {
	f.calls++
	f.keys = append(f.keys, key)
	return f.dec, f.err
}

type fakeImages struct {
	url     string
	err     error
	queries []string
}

var _ image.Fetcher = (*fakeImages)(nil)

func (f *fakeImages) Fetch(_ context.Context, q string) (string, error) {
	f.queries = append(f.queries, q)
	return f.url, f.err
}

type fakeInv struct {
	views [][]string
	err   error
}

var _ invalidate.Invalidator = (*fakeInv)(nil)

func (f *fakeInv) Invalidate(_ context.Context, views ...string) error {
	f.views = append(f.views, append([]string(nil), views...))
	return f.err
}

func (f *fakeInv) all() []string {
	var out []string
	for _, v := range f.views {
		out = append(out, v...)
	}
	return out
}

// fixture wires services over one memStore with a single known user.
type fixture struct {
	store       *memStore
	users       *memUsers
	lim         *fakeLimiter
	images      *fakeImages
	inv         *fakeInv
	journal     *JournalServiceImpl
	collections *CollectionServiceImpl
	userSvc     *UserServiceImpl
	user        model.User
	ctx         context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	st := newMemStore()
	users := &memUsers{memStore: st}
	lim := &fakeLimiter{dec: limiter.Decision{Allowed: true, Remaining: 10}}
	imgs := &fakeImages{url: "https://img/mood.png"}
	inv := &fakeInv{}

	g := NewGuard(users, lim, log)
	f := &fixture{
		store:       st,
		users:       users,
		lim:         lim,
		images:      imgs,
		inv:         inv,
		journal:     NewJournalService(g, &memEntries{st}, &memDrafts{st}, &memCollections{st}, imgs, inv, log),
		collections: NewCollectionService(g, &memCollections{st}, inv, log),
		userSvc:     NewUserService(g, users, log),
	}

	f.user = model.User{ID: uuid.Must(uuid.NewV4()), ExternalID: "ext|alice", Email: "alice@example.com"}
	st.users[f.user.ID] = f.user
	f.ctx = auth.WithIdentity(context.Background(), auth.Identity{Subject: "ext|alice"})
	return f
}

func (f *fixture) collection(t *testing.T, name string) *model.Collection {
	t.Helper()
	c, err := f.collections.Create(f.ctx, model.CollectionInput{Name: name})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	return c
}

func entryIn(title, moodID string, coll *uuid.UUID) model.EntryInput {
	return model.EntryInput{Title: title, Content: "<p>" + title + "</p>", Mood: moodID, CollectionID: coll}
}
