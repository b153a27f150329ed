package research

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body.Query == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Query is required"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": sampleResults(3)})
	})
	mux.HandleFunc("/api/summarize", func(w http.ResponseWriter, r *http.Request) {
		var req SummarizeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotNil(t, req.SearchResults)
		_ = json.NewEncoder(w).Encode(SummarizeResponse{Summary: sampleSummary, ID: "abc"})
	})
	return httptest.NewServer(mux)
}

func TestRemote_SearchAndSummarize(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()
	r := NewRemote(srv.URL+"/", 5*time.Second)

	results, err := r.Search(context.Background(), "gnn")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	resp, err := r.Summarize(context.Background(), SummarizeRequest{Query: "gnn"})
	require.NoError(t, err)
	assert.Equal(t, sampleSummary, resp.Summary)
	assert.Equal(t, "abc", resp.ID)
}

func TestRemote_ErrorBody(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()
	r := NewRemote(srv.URL, 5*time.Second)

	_, err := r.Search(context.Background(), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Query is required", apiErr.Message)
}

func TestRemote_DrivesController(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()

	c := NewController(NewRemote(srv.URL, 5*time.Second), noPacing)
	require.NoError(t, c.Submit(context.Background(), "gnn", ""))
	s := c.Snapshot()
	assert.Equal(t, PhaseSummary, s.Phase)
	assert.Equal(t, "abc", s.RecordID)
	assert.Len(t, s.Results, 3)
}
