// Package collaborators holds the HTTP clients for the three external
// services the coordinator depends on: scoring, mint and settlement.
// Each client is a thin JSON POST wrapper; timeouts and retries are the
// caller's business via context.
package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseSize = 1 << 20

// ScoringClient asks the scoring service for an advisory price computed
// from a structured feature form.
type ScoringClient struct {
	http *http.Client
	url  string
}

func NewScoringClient(url string, timeout time.Duration) *ScoringClient {
	return &ScoringClient{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

type scoringResponse struct {
	Prediction float64 `json:"prediction"`
}

func (c *ScoringClient) Score(ctx context.Context, features map[string]any) (float64, error) {
	var out scoringResponse
	if err := postJSON(ctx, c.http, c.url, features, &out); err != nil {
		return 0, err
	}
	return out.Prediction, nil
}

// postJSON sends the request body and decodes the response into out.
// Any non-2xx status is an error carrying the status code.
func postJSON(ctx context.Context, client *http.Client, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out)
}
