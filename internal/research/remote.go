package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"research-summary/internal/search"
)

// APIError is a non-2xx answer from the research server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("research server returned %d: %s", e.Status, e.Message)
}

// Remote talks to a running server through /api/search and /api/summarize,
// the same calls the browser page makes.
type Remote struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Search(ctx context.Context, query string) ([]search.Result, error) {
	var out struct {
		Results []search.Result `json:"results"`
	}
	if err := r.post(ctx, "/api/search", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []search.Result{}
	}
	return out.Results, nil
}

func (r *Remote) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	if req.SearchResults == nil {
		req.SearchResults = []search.Result{}
	}
	var out SummarizeResponse
	err := r.post(ctx, "/api/summarize", req, &out)
	return out, err
}

func (r *Remote) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
