// Package composer drives one entry-editing session: it decides whether the
// form shows an existing entry, the saved draft or a blank form, and it
// serializes draft autosaves with publishing.
package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
	"github.com/TariqKichawele/Reflect/internal/result"
)

// NewCollectionOption is the collection-picker value that opens the creation dialog.
const NewCollectionOption = "new"

var (
	ErrNoChanges        = errors.New("no changes")
	ErrBusy             = errors.New("another save is in progress")
	ErrDraftUnavailable = errors.New("drafts are only kept for new entries")
	ErrNotStarted       = errors.New("session not started")
	ErrNoPreview        = errors.New("mood image unavailable")
	// ErrSuperseded reports a response that arrived after the session moved on.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Actions are the remote operations the workflow depends on.
type Actions interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*model.EntryView, error)
	CreateEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, in model.EntryInput) (*model.Entry, error)
	GetDraft(ctx context.Context) result.Result[*model.Draft]
	SaveDraft(ctx context.Context, in model.DraftInput) result.Result[model.Draft]
	ListCollections(ctx context.Context) ([]model.Collection, error)
	CreateCollection(ctx context.Context, in model.CollectionInput) (*model.Collection, error)
	MoodImage(ctx context.Context, moodID string) (string, error)
}

// LocalDrafts mirrors the draft on the client.
type LocalDrafts interface {
	Load() (model.DraftInput, bool, error)
	Save(in model.DraftInput) error
	Clear() error
}

// NavContext is the navigation input of a session.
type NavContext struct {
	EditID string // empty for a new entry
}

// Mode says which server record a session edits.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeEdit
	ModeNew
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeNew:
		return "new"
	default:
		return "uninitialized"
	}
}

// State is the observable state of the form.
type State int

const (
	StateUninitialized State = iota
	StateEditMode
	StateNewMode
	StateDirty
	StateSubmitting
	StatePublished
)

func (s State) String() string {
	return [...]string{"uninitialized", "edit", "new", "dirty", "submitting", "published"}[s]
}

// Fields are the editable values of the form.
type Fields struct {
	Title        string
	Content      string
	Mood         string
	CollectionID string // empty means unorganized
}

func fieldsFromEntry(e model.Entry) Fields {
	f := Fields{Title: e.Title, Content: e.Content, Mood: e.Mood}
	if e.CollectionID != nil {
		f.CollectionID = e.CollectionID.String()
	}
	return f
}

func (f Fields) draftInput() model.DraftInput {
	return model.DraftInput{Title: f.Title, Content: f.Content, Mood: f.Mood}
}

// Composer is safe for concurrent use.
type Composer struct {
	actions Actions
	local   LocalDrafts
	log     *zap.Logger

	// one autosave or publish at a time
	writeSem chan struct{}

	mu          sync.Mutex
	started     bool
	nav         NavContext
	mode        Mode
	editID      uuid.UUID
	loading     bool
	fields      Fields
	snapshot    Fields
	loadGen     uint64
	imageGen    uint64
	moodImage   string
	submitting  bool
	published   *model.Entry
	redirect    string
	dialogOpen  bool
	collections []model.Collection
}

// New constructs a Composer; local may be nil.
func New(actions Actions, local LocalDrafts, log *zap.Logger) *Composer {
	return &Composer{
		actions:  actions,
		local:    local,
		log:      log,
		writeSem: make(chan struct{}, 1),
	}
}

// Start routes the session by nav and loads the authoritative source of the
// mode. Calling it again with the same nav does nothing.
func (c *Composer) Start(ctx context.Context, nav NavContext) error {
	c.mu.Lock()
	if c.started && c.nav == nav {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.nav = nav
	c.loadGen++
	gen := c.loadGen
	c.mode = ModeNew
	c.editID = uuid.Nil
	var idErr error
	if nav.EditID != "" {
		c.mode = ModeEdit
		c.editID, idErr = uuid.FromString(nav.EditID)
	}
	mode, id := c.mode, c.editID
	c.fields, c.snapshot = Fields{}, Fields{}
	c.loading = true
	c.moodImage = ""
	c.imageGen++
	c.published, c.redirect = nil, ""
	c.dialogOpen = false
	c.mu.Unlock()

	if mode == ModeEdit {
		if idErr != nil {
			return c.applyLoad(gen, mode, Fields{}, Fields{}, errs.Invalid("bad entry id %q", nav.EditID))
		}
		v, err := c.actions.GetEntry(ctx, id)
		if err != nil {
			return c.applyLoad(gen, mode, Fields{}, Fields{}, err)
		}
		f := fieldsFromEntry(v.Entry)
		return c.applyLoad(gen, mode, f, f, nil)
	}

	d, err := c.actions.GetDraft(ctx).Unwrap()
	if err != nil {
		return c.applyLoad(gen, mode, Fields{}, Fields{}, fmt.Errorf("load draft: %w", err))
	}
	if d != nil {
		f := Fields{Title: d.Title, Content: d.Content, Mood: d.Mood}
		return c.applyLoad(gen, mode, f, f, nil)
	}
	// no server draft: fall back to the local mirror, shown as unsaved
	return c.applyLoad(gen, mode, c.localDraft(), Fields{}, nil)
}

func (c *Composer) localDraft() Fields {
	if c.local == nil {
		return Fields{}
	}
	in, ok, err := c.local.Load()
	if err != nil {
		c.log.Warn("local draft unreadable", zap.Error(err))
		return Fields{}
	}
	if !ok {
		return Fields{}
	}
	return Fields{Title: in.Title, Content: in.Content, Mood: in.Mood}
}

// applyLoad seeds the form only if the load is still current.
func (c *Composer) applyLoad(gen uint64, mode Mode, fields, snapshot Fields, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen || mode != c.mode {
		c.log.Debug("stale load discarded", zap.Uint64("gen", gen), zap.Stringer("mode", mode))
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		return err
	}
	c.fields, c.snapshot = fields, snapshot
	return nil
}

func (c *Composer) edit(fn func(f *Fields)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeUninitialized {
		return ErrNotStarted
	}
	if c.submitting {
		return ErrBusy
	}
	fn(&c.fields)
	c.published, c.redirect = nil, ""
	return nil
}

// SetTitle and SetContent replace the text fields. They fail while a
// publish is in flight.
func (c *Composer) SetTitle(s string) error   { return c.edit(func(f *Fields) { f.Title = s }) }
func (c *Composer) SetContent(s string) error { return c.edit(func(f *Fields) { f.Content = s }) }

// SetMood selects a mood and previews its image. A preview that resolves
// after a later mood change is dropped.
func (c *Composer) SetMood(ctx context.Context, name string) error {
	m, ok := mood.ByName(name)
	if !ok {
		return errs.ErrInvalidMood
	}
	var gen uint64
	err := c.edit(func(f *Fields) {
		f.Mood = m.ID
		c.imageGen++
		gen = c.imageGen
		c.moodImage = ""
	})
	if err != nil {
		return err
	}

	url, err := c.actions.MoodImage(ctx, m.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.imageGen {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoPreview, err)
	}
	c.moodImage = url
	return nil
}

// SetCollection picks a collection id, "" for unorganized, or
// NewCollectionOption to open the creation dialog.
func (c *Composer) SetCollection(v string) error {
	if v == NewCollectionOption {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.mode == ModeUninitialized {
			return ErrNotStarted
		}
		c.dialogOpen = true
		return nil
	}
	if v != "" {
		if _, err := uuid.FromString(v); err != nil {
			return errs.Invalid("bad collection id %q", v)
		}
	}
	return c.edit(func(f *Fields) { f.CollectionID = v })
}

// SaveDraft persists the form as the user's draft. Only new entries have drafts.
func (c *Composer) SaveDraft(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.mode != ModeNew:
		c.mu.Unlock()
		return ErrDraftUnavailable
	case c.submitting:
		c.mu.Unlock()
		return ErrBusy
	case c.fields == c.snapshot:
		c.mu.Unlock()
		return ErrNoChanges
	}
	select {
	case c.writeSem <- struct{}{}:
	default:
		c.mu.Unlock()
		return ErrBusy
	}
	gen := c.loadGen
	f := c.fields
	c.mu.Unlock()
	defer func() { <-c.writeSem }()

	if _, err := c.actions.SaveDraft(ctx, f.draftInput()).Unwrap(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if c.local != nil {
		if err := c.local.Save(f.draftInput()); err != nil {
			c.log.Warn("local draft not saved", zap.Error(err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.loadGen && c.mode == ModeNew {
		c.snapshot = f
	}
	return nil
}

// Publish creates (new mode) or updates (edit mode) the entry. It waits for
// a pending autosave to finish first.
func (c *Composer) Publish(ctx context.Context) (*model.Entry, error) {
	c.mu.Lock()
	switch {
	case c.mode == ModeUninitialized:
		c.mu.Unlock()
		return nil, ErrNotStarted
	case c.submitting:
		c.mu.Unlock()
		return nil, ErrBusy
	case c.fields == c.snapshot:
		c.mu.Unlock()
		return nil, ErrNoChanges
	}
	c.submitting = true
	c.mu.Unlock()

	select {
	case c.writeSem <- struct{}{}:
	case <-ctx.Done():
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		return nil, ctx.Err()
	}
	defer func() { <-c.writeSem }()

	c.mu.Lock()
	gen, mode, editID, f := c.loadGen, c.mode, c.editID, c.fields
	c.mu.Unlock()

	e, err := c.submit(ctx, mode, editID, f)
	if err == nil && mode == ModeNew && c.local != nil {
		if cerr := c.local.Clear(); cerr != nil {
			c.log.Warn("local draft not cleared", zap.Error(cerr))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return nil, err
	}
	if gen != c.loadGen || mode != c.mode {
		return e, nil
	}
	c.published = e
	if mode == ModeNew {
		c.fields, c.snapshot = Fields{}, Fields{}
		c.moodImage = ""
		c.imageGen++
		c.redirect = e.CollectionPath()
		return e, nil
	}
	seeded := fieldsFromEntry(*e)
	c.fields, c.snapshot = seeded, seeded
	return e, nil
}

// submit reads score and query from the catalog for the mood chosen now.
func (c *Composer) submit(ctx context.Context, mode Mode, editID uuid.UUID, f Fields) (*model.Entry, error) {
	m, ok := mood.ByName(f.Mood)
	if !ok {
		return nil, errs.ErrInvalidMood
	}
	in := model.EntryInput{
		Title:     f.Title,
		Content:   f.Content,
		Mood:      m.ID,
		MoodQuery: m.PixabayQuery,
	}
	if f.CollectionID != "" {
		id, err := uuid.FromString(f.CollectionID)
		if err != nil {
			return nil, errs.Invalid("bad collection id %q", f.CollectionID)
		}
		in.CollectionID = &id
	}

	c.log.Debug("publishing", zap.Stringer("mode", mode), zap.String("mood", m.ID), zap.Int("score", m.Score))
	if mode == ModeNew {
		return c.actions.CreateEntry(ctx, in)
	}
	return c.actions.UpdateEntry(ctx, editID, in)
}

// LoadCollections refreshes the picker options.
func (c *Composer) LoadCollections(ctx context.Context) error {
	cs, err := c.actions.ListCollections(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.collections = cs
	c.mu.Unlock()
	return nil
}

// CreateCollection runs the side-flow: the new id lands in the collection
// field and nothing else in the form changes.
func (c *Composer) CreateCollection(ctx context.Context, in model.CollectionInput) (*model.Collection, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	gen := c.loadGen
	c.mu.Unlock()

	col, err := c.actions.CreateCollection(ctx, in)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if gen == c.loadGen && !c.submitting {
		c.fields.CollectionID = col.ID.String()
	}
	c.dialogOpen = false
	c.mu.Unlock()

	if err := c.LoadCollections(ctx); err != nil {
		c.log.Warn("collections not refreshed", zap.Error(err))
	}
	return col, nil
}

// CloseDialog dismisses the collection dialog without creating anything.
func (c *Composer) CloseDialog() {
	c.mu.Lock()
	c.dialogOpen = false
	c.mu.Unlock()
}

// State derives the form state; submitting and published win over dirty.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.submitting:
		return StateSubmitting
	case c.published != nil:
		return StatePublished
	case c.mode == ModeUninitialized || c.loading:
		return StateUninitialized
	case c.fields != c.snapshot:
		return StateDirty
	case c.mode == ModeEdit:
		return StateEditMode
	default:
		return StateNewMode
	}
}

// Mode reports the mode chosen by the last Start.
func (c *Composer) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Fields returns a copy of the current form values.
func (c *Composer) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// Dirty reports whether the form differs from its last loaded or saved values.
func (c *Composer) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields != c.snapshot
}

// MoodImage is the preview URL for the current mood, empty when unknown.
func (c *Composer) MoodImage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moodImage
}

// DialogOpen reports whether the new collection dialog is showing.
func (c *Composer) DialogOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialogOpen
}

// Published returns the entry of the last successful publish.
func (c *Composer) Published() *model.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published
}

// Redirect is the collection view to show after a new entry was published:
// a collection id or "unorganized".
func (c *Composer) Redirect() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirect
}

// Collections returns the list fetched by LoadCollections.
func (c *Composer) Collections() []model.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Collection(nil), c.collections...)
}
