// Package localstore keeps CLI state on disk: the access token and a mirror
// of the last saved draft.
package localstore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/peterbourgon/diskv/v3"

	"github.com/TariqKichawele/Reflect/internal/composer"
	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/model"
)

const (
	keyToken = "token"
	keyDraft = "draft"
)

// ErrNoToken means the user has to log in.
var ErrNoToken = errors.New("no valid token (login required)")

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Store struct {
	d   *diskv.Diskv
	now func() time.Time
}

var _ composer.LocalDrafts = (*Store)(nil)

// Open uses dir as the base path; it is created on first write.
func Open(dir string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
			FilePerm:     0o600,
			PathPerm:     0o700,
		}),
		now: time.Now,
	}
}

// SaveToken stores tok with the expiry read from its claims. The signature
// is not checked here; the server does that.
func (s *Store) SaveToken(tok string) error {
	var claims jwt.RegisteredClaims
	exp := s.now().Add(15 * time.Minute)
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err == nil && claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	b, err := json.Marshal(tokenFile{AccessToken: tok, ExpiresAt: exp})
	if err != nil {
		return err
	}
	return s.d.Write(keyToken, b)
}

func (s *Store) Token() (string, error) {
	if !s.d.Has(keyToken) {
		return "", ErrNoToken
	}
	b, err := s.d.Read(keyToken)
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || s.now().After(tf.ExpiresAt) {
		return "", ErrNoToken
	}
	return tf.AccessToken, nil
}

func (s *Store) Logout() error { return s.erase(keyToken) }

func (s *Store) Load() (model.DraftInput, bool, error) {
	if !s.d.Has(keyDraft) {
		return model.DraftInput{}, false, nil
	}
	b, err := s.d.Read(keyDraft)
	if err != nil {
		return model.DraftInput{}, false, err
	}
	var in convert.DraftInput
	if err := json.Unmarshal(b, &in); err != nil {
		return model.DraftInput{}, false, err
	}
	return convert.FromDraftInput(in), true, nil
}

func (s *Store) Save(in model.DraftInput) error {
	b, err := json.Marshal(convert.ToDraftInput(in))
	if err != nil {
		return err
	}
	return s.d.Write(keyDraft, b)
}

func (s *Store) Clear() error { return s.erase(keyDraft) }

func (s *Store) erase(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}
