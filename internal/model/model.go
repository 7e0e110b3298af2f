// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/TariqKichawele/Reflect/internal/mood"
)

// Unorganized is the path segment and filter value for entries without a collection.
const Unorganized = "unorganized"

// User is the internal account mirrored from the external identity provider.
type User struct {
	ID         uuid.UUID // PK
	ExternalID string    // provider subject, unique
	Email      string
	Name       string
	ImageURL   string
	CreatedAt  time.Time
}

// Collection groups entries of one user.
type Collection struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CollectionRef is the slice of a collection embedded into an entry read.
type CollectionRef struct {
	ID   uuid.UUID
	Name string
}

// Entry is a published journal entry.
type Entry struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CollectionID *uuid.UUID     // nil means unorganized
	Collection   *CollectionRef // populated on reads only
	Title        string
	Content      string
	Mood         string
	MoodScore    int // fixed at write time
	MoodImageURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CollectionPath returns the collection id or Unorganized.
func (e Entry) CollectionPath() string {
	if e.CollectionID == nil {
		return Unorganized
	}
	return e.CollectionID.String()
}

// EntryView is an entry annotated with its resolved mood metadata.
type EntryView struct {
	Entry
	MoodData *mood.Mood
}

// Draft is the single unpublished work-in-progress of a user.
type Draft struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Content   string
	Mood      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntryInput is the payload of create/update entry calls.
type EntryInput struct {
	Title        string
	Content      string
	Mood         string
	MoodQuery    string // image search query computed by the client; catalog query if empty
	CollectionID *uuid.UUID
}

// DraftInput is the payload of a draft save.
type DraftInput struct {
	Title   string
	Content string
	Mood    string
}

// CollectionInput is the payload of a collection create.
type CollectionInput struct {
	Name        string
	Description string
}
