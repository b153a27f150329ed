package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSerpAPI(t *testing.T, organic int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
			return
		}
		assert.Equal(t, "google", q.Get("engine"))
		assert.Equal(t, "5", q.Get("num"))

		results := make([]map[string]any, 0, organic)
		for i := 1; i <= organic; i++ {
			results = append(results, map[string]any{
				"position": i,
				"title":    fmt.Sprintf("%s result %d", q.Get("q"), i),
				"link":     fmt.Sprintf("https://example.com/%d", i),
				"snippet":  fmt.Sprintf("snippet %d", i),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"organic_results": results})
	}))
}

func TestSerpAPIClient_Search_TruncatesToMax(t *testing.T) {
	srv := fakeSerpAPI(t, 8)
	defer srv.Close()

	c := NewSerpAPIClient("test-key", srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "graph neural networks", MaxResults)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, Result{
		Title:   "graph neural networks result 1",
		Link:    "https://example.com/1",
		Snippet: "snippet 1",
	}, results[0])
}

func TestSerpAPIClient_Search_FewerResults(t *testing.T) {
	srv := fakeSerpAPI(t, 2)
	defer srv.Close()

	c := NewSerpAPIClient("test-key", srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "rare topic", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSerpAPIClient_Search_NoOrganicResults(t *testing.T) {
	srv := fakeSerpAPI(t, 0)
	defer srv.Close()

	c := NewSerpAPIClient("test-key", srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "nothing", MaxResults)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSerpAPIClient_Search_UpstreamError(t *testing.T) {
	srv := fakeSerpAPI(t, 3)
	defer srv.Close()

	c := NewSerpAPIClient("wrong-key", srv.URL, 5*time.Second)
	_, err := c.Search(context.Background(), "anything", MaxResults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSerpAPIClient_Search_EmptyQuery(t *testing.T) {
	c := NewSerpAPIClient("test-key", "http://127.0.0.1:1", time.Second)
	_, err := c.Search(context.Background(), "   ", MaxResults)
	assert.Error(t, err)
}

func TestTop(t *testing.T) {
	in := []Result{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	assert.Len(t, Top(in, 2), 2)
	assert.Len(t, Top(in, 10), 3)
	assert.Len(t, Top(in, 0), 3)
	assert.NotNil(t, Top(nil, 5))
}
