package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSerpAPIURL is the SerpAPI search endpoint.
const DefaultSerpAPIURL = "https://serpapi.com/search"

// SerpAPIClient queries Google results through SerpAPI.
type SerpAPIClient struct {
	BaseURL    string
	APIKey     string
	Engine     string
	HTTPClient *http.Client
}

// NewSerpAPIClient creates a client. An empty baseURL selects the public endpoint.
func NewSerpAPIClient(apiKey, baseURL string, timeout time.Duration) *SerpAPIClient {
	if baseURL == "" {
		baseURL = DefaultSerpAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SerpAPIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Engine:  "google",
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// Search returns the first maxResults organic results for query.
func (c *SerpAPIClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if maxResults <= 0 {
		maxResults = MaxResults
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("engine", c.Engine)
	q.Set("q", query)
	q.Set("api_key", c.APIKey)
	q.Set("num", strconv.Itoa(maxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("SerpAPI request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if data.Error != "" && len(data.OrganicResults) == 0 {
		// SerpAPI reports "no results" this way with a 200.
		return []Result{}, nil
	}

	results := make([]Result, 0, len(data.OrganicResults))
	for _, r := range data.OrganicResults {
		results = append(results, Result{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		})
	}
	return Top(results, maxResults), nil
}
