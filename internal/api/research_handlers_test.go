package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-summary/internal/research"
	"research-summary/internal/summary"
)

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestSearchHandler_MissingKeyCheckedFirst(t *testing.T) {
	env := newTestEnv(t, false)
	env.deps.Research.Searcher = nil
	r := SetupRouter(env.cfg, env.deps)

	w := postJSON(r, "/api/search", `{"query":""}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SerpAPI key is missing", errorOf(t, w))
}

func TestSearchHandler_QueryRequired(t *testing.T) {
	env := newTestEnv(t, false)
	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{}`, `not json`} {
		w := postJSON(env.router, "/api/search", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Query is required", errorOf(t, w))
	}
}

func TestSearchHandler_ReturnsTopFive(t *testing.T) {
	env := newTestEnv(t, false)
	w := postJSON(env.router, "/api/search", `{"query":"graph neural networks"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Results []map[string]string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Results, 5)
	assert.Equal(t, "Result 1", body.Results[0]["title"])
	assert.Equal(t, "https://example.com/1", body.Results[0]["link"])
	assert.Equal(t, "snippet", body.Results[0]["snippet"])
}

func TestSearchHandler_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.deps.Research.Searcher = &stubProvider{err: errUpstream}

	w := postJSON(env.router, "/api/search", `{"query":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch search results", errorOf(t, w))
}

func TestSummarizeHandler_MissingKeyCheckedFirst(t *testing.T) {
	env := newTestEnv(t, false)
	env.deps.Research.Generator = nil

	w := postJSON(env.router, "/api/summarize", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Gemini API key is missing", errorOf(t, w))
}

func TestSummarizeHandler_InputRequired(t *testing.T) {
	env := newTestEnv(t, false)
	bodies := []string{
		`{"query":"q"}`,
		`{"searchResults":[]}`,
		`{"searchResults":[],"query":""}`,
		`garbage`,
	}
	for _, body := range bodies {
		w := postJSON(env.router, "/api/summarize", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Search results and query are required", errorOf(t, w))
	}
}

func TestSummarizeHandler_ReturnsSummaryAndRecordID(t *testing.T) {
	env := newTestEnv(t, true)
	w := postJSON(env.router, "/api/summarize",
		`{"query":"gnn","searchResults":[{"title":"A","link":"https://a.example","snippet":"alpha"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp research.SummarizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testSummary, resp.Summary)
	require.NotEmpty(t, resp.ID)

	rec, err := env.history.Get(t.Context(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "gnn", rec.Query)
}

func TestSummarizeHandler_WithoutHistoryOmitsID(t *testing.T) {
	env := newTestEnv(t, false)
	w := postJSON(env.router, "/api/summarize", `{"query":"gnn","searchResults":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"id"`)
}

func TestSummarizeHandler_CustomContent(t *testing.T) {
	env := newTestEnv(t, false)
	w := postJSON(env.router, "/api/summarize", `{"useCustomContent":true,"customContent":"my notes"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSummarizeHandler_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.deps.Research.Generator = &stubGenerator{err: errUpstream}

	w := postJSON(env.router, "/api/summarize", `{"query":"q","searchResults":[]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate summary", errorOf(t, w))
}

func TestParseHandler(t *testing.T) {
	env := newTestEnv(t, false)
	payload, _ := json.Marshal(map[string]string{"summary": testSummary})
	w := postJSON(env.router, "/api/parse", string(payload))
	require.Equal(t, http.StatusOK, w.Code)

	var f summary.Formatted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, "Graph neural networks learn from <strong>graph</strong> data.", f.Overview)
	assert.Len(t, f.CoreInsights, 2)
	assert.Len(t, f.Ideas, 1)
	assert.Equal(t, "<strong>Benchmark:</strong> build one", f.Ideas[0].Text)

	w = postJSON(env.router, "/api/parse", `{"summary":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"overview":"","coreInsights":[],"gaps":[],"viewpoints":[],"ideas":[]}`, w.Body.String())
}
