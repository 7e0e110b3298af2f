// Package client talks to the Reflect HTTP API. It implements the actions
// the composer needs plus the listing and deletion calls of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/TariqKichawele/Reflect/internal/composer"
	"github.com/TariqKichawele/Reflect/internal/convert"
	"github.com/TariqKichawele/Reflect/internal/errs"
	"github.com/TariqKichawele/Reflect/internal/model"
	"github.com/TariqKichawele/Reflect/internal/mood"
	"github.com/TariqKichawele/Reflect/internal/result"
)

// StatusError is a non-2xx answer of a raise-class endpoint.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// Unwrap maps the status back to the shared sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusTooManyRequests:
		return errs.ErrRateLimited
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusBadRequest:
		return errs.ErrInvalidInput
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	default:
		return nil
	}
}

type Client struct {
	base  string
	token string
	hc    *http.Client
}

var _ composer.Actions = (*Client)(nil)

// New returns a client for baseURL; token may be empty for public calls.
func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), token: token, hc: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb convert.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: eb.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// tagged calls a tagged endpoint; transport problems become failures too.
func tagged[T any](ctx context.Context, c *Client, method, path string, body any) result.Result[T] {
	var res result.Result[T]
	if err := c.do(ctx, method, path, body, &res); err != nil {
		return result.Fail[T](err.Error())
	}
	return res
}

func (c *Client) Quote(ctx context.Context) (string, error) {
	var q convert.Quote
	if err := c.do(ctx, http.MethodGet, "/api/quote", nil, &q); err != nil {
		return "", err
	}
	return q.Quote, nil
}

func (c *Client) RevalidateQuote(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/quote/revalidate", nil, nil)
}

func (c *Client) Moods(ctx context.Context) ([]mood.Mood, error) {
	var ms []mood.Mood
	if err := c.do(ctx, http.MethodGet, "/api/moods", nil, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (c *Client) MoodImage(ctx context.Context, moodID string) (string, error) {
	var img convert.Image
	if err := c.do(ctx, http.MethodGet, "/api/moods/"+url.PathEscape(moodID)+"/image", nil, &img); err != nil {
		return "", err
	}
	return img.URL, nil
}

// Sync makes sure the caller has an internal account.
func (c *Client) Sync(ctx context.Context) (*model.User, error) {
	var u convert.User
	if err := c.do(ctx, http.MethodPost, "/api/users/sync", nil, &u); err != nil {
		return nil, err
	}
	m, err := convert.FromUser(u)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// --- collections ---

func (c *Client) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var cs []convert.Collection
	if err := c.do(ctx, http.MethodGet, "/api/collections", nil, &cs); err != nil {
		return nil, err
	}
	out := make([]model.Collection, 0, len(cs))
	for _, x := range cs {
		m, err := convert.FromCollection(x)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) CreateCollection(ctx context.Context, in model.CollectionInput) (*model.Collection, error) {
	var x convert.Collection
	if err := c.do(ctx, http.MethodPost, "/api/collections", convert.ToCollectionInput(in), &x); err != nil {
		return nil, err
	}
	m, err := convert.FromCollection(x)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/collections/"+id.String(), nil, nil)
}

// --- entries ---

func (c *Client) ListEntries(ctx context.Context, f model.EntryFilter) result.Result[[]model.EntryView] {
	q := url.Values{}
	if s := f.Collection.String(); s != "" {
		q.Set("collection", s)
	}
	if f.Order != "" {
		q.Set("order", string(f.Order))
	}
	path := "/api/entries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	res := tagged[[]convert.Entry](ctx, c, http.MethodGet, path, nil)
	if !res.Success() {
		return result.Fail[[]model.EntryView](res.Error())
	}
	vs, err := convert.FromEntries(res.Data())
	if err != nil {
		return result.Fail[[]model.EntryView](err.Error())
	}
	return result.Ok(vs)
}

func (c *Client) GetEntry(ctx context.Context, id uuid.UUID) (*model.EntryView, error) {
	var e convert.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+id.String(), nil, &e); err != nil {
		return nil, err
	}
	v, err := convert.FromEntry(e)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) CreateEntry(ctx context.Context, in model.EntryInput) (*model.Entry, error) {
	return c.writeEntry(ctx, http.MethodPost, "/api/entries", in)
}

func (c *Client) UpdateEntry(ctx context.Context, id uuid.UUID, in model.EntryInput) (*model.Entry, error) {
	return c.writeEntry(ctx, http.MethodPut, "/api/entries/"+id.String(), in)
}

func (c *Client) writeEntry(ctx context.Context, method, path string, in model.EntryInput) (*model.Entry, error) {
	var e convert.Entry
	if err := c.do(ctx, method, path, convert.ToEntryInput(in), &e); err != nil {
		return nil, err
	}
	v, err := convert.FromEntry(e)
	if err != nil {
		return nil, err
	}
	return &v.Entry, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+id.String(), nil, nil)
}

// --- draft ---

func (c *Client) GetDraft(ctx context.Context) result.Result[*model.Draft] {
	res := tagged[*convert.Draft](ctx, c, http.MethodGet, "/api/draft", nil)
	if !res.Success() {
		return result.Fail[*model.Draft](res.Error())
	}
	if res.Data() == nil {
		return result.Ok[*model.Draft](nil)
	}
	d, err := convert.FromDraft(*res.Data())
	if err != nil {
		return result.Fail[*model.Draft](err.Error())
	}
	return result.Ok(&d)
}

func (c *Client) SaveDraft(ctx context.Context, in model.DraftInput) result.Result[model.Draft] {
	res := tagged[convert.Draft](ctx, c, http.MethodPut, "/api/draft", convert.ToDraftInput(in))
	if !res.Success() {
		return result.Fail[model.Draft](res.Error())
	}
	d, err := convert.FromDraft(res.Data())
	if err != nil {
		return result.Fail[model.Draft](err.Error())
	}
	return result.Ok(d)
}

// IsUnauthorized reports whether err asks the user to log in again.
func IsUnauthorized(err error) bool { return errors.Is(err, errs.ErrUnauthorized) }
