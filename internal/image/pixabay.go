// Package image resolves illustrative images for mood search queries.
package image

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the Pixabay search endpoint.
const DefaultBaseURL = "https://pixabay.com/api/"

// Fetcher returns an image URL for a keyword query; "" when nothing matched.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// Pixabay searches illustrations on pixabay.com.
type Pixabay struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// NewPixabay constructs a Pixabay client; empty baseURL means DefaultBaseURL.
func NewPixabay(baseURL, apiKey string, hc *http.Client) *Pixabay {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Pixabay{baseURL: baseURL, apiKey: apiKey, hc: hc}
}

type searchResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

// Fetch returns the first hit's large image URL.
func (p *Pixabay) Fetch(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("q", query)
	q.Set("min_width", "1280")
	q.Set("min_height", "720")
	q.Set("image_type", "illustration")
	q.Set("category", "feelings")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pixabay: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("pixabay: decode: %w", err)
	}
	if len(sr.Hits) == 0 {
		return "", nil
	}
	return sr.Hits[0].LargeImageURL, nil
}
