package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AdviceSlipURL is the public advice endpoint.
const AdviceSlipURL = "https://api.adviceslip.com/advice"

// AdviceSlip fetches prompts from the Advice Slip API.
type AdviceSlip struct {
	url string
	hc  *http.Client
}

// NewAdviceSlip constructs the source; empty url means AdviceSlipURL.
func NewAdviceSlip(url string, hc *http.Client) *AdviceSlip {
	if url == "" {
		url = AdviceSlipURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &AdviceSlip{url: url, hc: hc}
}

// Fetch returns slip.advice.
func (a *AdviceSlip) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := a.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("adviceslip: status %d", resp.StatusCode)
	}

	var body struct {
		Slip struct {
			Advice string `json:"advice"`
		} `json:"slip"`
	}
	// the API answers text/html, so the content type is not checked
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("adviceslip: decode: %w", err)
	}
	return body.Slip.Advice, nil
}
