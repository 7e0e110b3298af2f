// Package convert maps domain models to the JSON shapes of the HTTP API and back.
package convert

import (
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
)

// --- wire types ---

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CollectionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is the entry shape; collectionId is null for unorganized entries.
type Entry struct {
	ID           string         `json:"id"`
	CollectionID *string        `json:"collectionId"`
	Collection   *CollectionRef `json:"collection,omitempty"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Mood         string         `json:"mood"`
	MoodScore    int            `json:"moodScore"`
	MoodImageURL string         `json:"moodImageUrl,omitempty"`
	MoodData     *mood.Mood     `json:"moodData,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type Draft struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EntryInput struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Mood         string  `json:"mood"`
	MoodQuery    string  `json:"moodQuery,omitempty"`
	CollectionID *string `json:"collectionId"`
}

type DraftInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Quote struct {
	Quote string `json:"quote"`
}

type Image struct {
	URL string `json:"url"`
}

// ErrorBody is the failure envelope of raise-class endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}

type Deleted struct {
	Deleted bool `json:"deleted"`
}

// --- helpers ---

func idPtr(id *u.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseIDPtr(s *string) (*u.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := u.FromString(*s)
	if err != nil {
		return nil, errs.Invalid("bad collection id %q", *s)
	}
	return &id, nil
}

func parseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, errs.Invalid("bad id %q", s)
	}
	return id, nil
}

// --- users ---

func ToUser(m model.User) User {
	return User{ID: m.ID.String(), Email: m.Email, Name: m.Name, ImageURL: m.ImageURL, CreatedAt: m.CreatedAt}
}

func FromUser(x User) (model.User, error) {
	id, err := parseID(x.ID)
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: id, Email: x.Email, Name: x.Name, ImageURL: x.ImageURL, CreatedAt: x.CreatedAt}, nil
}

// --- collections ---

func ToCollection(m model.Collection) Collection {
	return Collection{
		ID:          m.ID.String(),
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToCollections(ms []model.Collection) []Collection {
	out := make([]Collection, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToCollection(m))
	}
	return out
}

// FromCollection parses a wire collection.
func FromCollection(c Collection) (model.Collection, error) {
	id, err := parseID(c.ID)
	if err != nil {
		return model.Collection{}, err
	}
	return model.Collection{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func FromCollectionInput(in CollectionInput) model.CollectionInput {
	return model.CollectionInput{Name: in.Name, Description: in.Description}
}

func ToCollectionInput(in model.CollectionInput) CollectionInput {
	return CollectionInput{Name: in.Name, Description: in.Description}
}

// --- entries ---

func ToEntry(m model.Entry) Entry {
	e := Entry{
		ID:           m.ID.String(),
		CollectionID: idPtr(m.CollectionID),
		Title:        m.Title,
		Content:      m.Content,
		Mood:         m.Mood,
		MoodScore:    m.MoodScore,
		MoodImageURL: m.MoodImageURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Collection != nil {
		e.Collection = &CollectionRef{ID: m.Collection.ID.String(), Name: m.Collection.Name}
	}
	return e
}

// ToEntryView embeds the resolved mood metadata.
func ToEntryView(v model.EntryView) Entry {
	e := ToEntry(v.Entry)
	e.MoodData = v.MoodData
	return e
}

func ToEntryViews(vs []model.EntryView) []Entry {
	out := make([]Entry, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToEntryView(v))
	}
	return out
}

// FromEntry parses a wire entry.
func FromEntry(e Entry) (model.EntryView, error) {
	id, err := parseID(e.ID)
	if err != nil {
		return model.EntryView{}, err
	}
	cid, err := parseIDPtr(e.CollectionID)
	if err != nil {
		return model.EntryView{}, err
	}
	m := model.Entry{
		ID:           id,
		CollectionID: cid,
		Title:        e.Title,
		Content:      e.Content,
		Mood:         e.Mood,
		MoodScore:    e.MoodScore,
		MoodImageURL: e.MoodImageURL,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Collection != nil {
		ref, err := parseID(e.Collection.ID)
		if err != nil {
			return model.EntryView{}, err
		}
		m.Collection = &model.CollectionRef{ID: ref, Name: e.Collection.Name}
	}
	return model.EntryView{Entry: m, MoodData: e.MoodData}, nil
}

func FromEntries(es []Entry) ([]model.EntryView, error) {
	out := make([]model.EntryView, 0, len(es))
	for _, e := range es {
		v, err := FromEntry(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FromEntryInput parses the create/update payload; an empty collectionId means unorganized.
func FromEntryInput(in EntryInput) (model.EntryInput, error) {
	cid, err := parseIDPtr(in.CollectionID)
	if err != nil {
		return model.EntryInput{}, err
	}
	return model.EntryInput{
		Title:        in.Title,
		Content:      in.Content,
		Mood:         in.Mood,
		MoodQuery:    in.MoodQuery,
		CollectionID: cid,
	}, nil
}

func ToEntryInput(in model.EntryInput) EntryInput {
	return EntryInput{
		Title:        in.Title,
		Content:      in.Content,
		Mood:         in.Mood,
		MoodQuery:    in.MoodQuery,
		CollectionID: idPtr(in.CollectionID),
	}
}

// --- drafts ---

func ToDraft(m model.Draft) Draft {
	return Draft{
		ID:        m.ID.String(),
		Title:     m.Title,
		Content:   m.Content,
		Mood:      m.Mood,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToDraftPtr keeps nil as nil.
func ToDraftPtr(m *model.Draft) *Draft {
	if m == nil {
		return nil
	}
	d := ToDraft(*m)
	return &d
}

func FromDraft(d Draft) (model.Draft, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return model.Draft{}, err
	}
	return model.Draft{
		ID:        id,
		Title:     d.Title,
		Content:   d.Content,
		Mood:      d.Mood,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func FromDraftInput(in DraftInput) model.DraftInput {
	return model.DraftInput{Title: in.Title, Content: in.Content, Mood: in.Mood}
}

func ToDraftInput(in model.DraftInput) DraftInput {
	return DraftInput{Title: in.Title, Content: in.Content, Mood: in.Mood}
}
