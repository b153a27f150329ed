package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"research-summary/internal/config"
	"research-summary/internal/history"
	"research-summary/internal/research"
	"research-summary/internal/search"
)

const testSummary = "## OVERVIEW\nGraph neural networks learn from **graph** data.\n\n## CORE INSIGHTS\n* **Message passing** is central\n* Pooling matters\n\n## GAPS & CHALLENGES\n* Scalability\n\n## VIEWPOINTS\n- Spectral vs spatial\n\n## PROJECT IDEAS\n* **Benchmark:** build one\n"

type stubProvider struct {
	results []search.Result
	err     error
}

func (p *stubProvider) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	return p.results, p.err
}

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, g.err
}

func (g *stubGenerator) Model() string { return "stub-model" }

func stubResults(n int) []search.Result {
	out := make([]search.Result, n)
	for i := range out {
		out[i] = search.Result{
			Title:   fmt.Sprintf("Result %d", i+1),
			Link:    fmt.Sprintf("https://example.com/%d", i+1),
			Snippet: "snippet",
		}
	}
	return out
}

func setupHistory(t *testing.T) *history.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	store := history.NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

type testEnv struct {
	cfg     *config.Config
	deps    *Deps
	router  *gin.Engine
	history *history.Store
}

func newTestEnv(t *testing.T, withHistory bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.ShareSecret = "test-share-secret"
	cfg.Server.ShareTTLHours = 1
	cfg.Gemini.Model = "stub-model"

	svc := &research.Service{
		Searcher:  &stubProvider{results: stubResults(7)},
		Generator: &stubGenerator{text: testSummary},
	}
	deps := &Deps{Research: svc, Pacing: research.Pacing{Ceiling: research.StepAnalysis}}
	env := &testEnv{cfg: cfg, deps: deps}
	if withHistory {
		env.history = setupHistory(t)
		deps.History = env.history
		svc.History = env.history
	}
	env.router = SetupRouter(cfg, deps)
	return env
}

func (e *testEnv) seedRecord(t *testing.T) *history.Record {
	t.Helper()
	rec, err := history.NewRecord("graph neural networks", "", stubResults(2), testSummary, "stub-model")
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}
	if err := e.history.Create(context.Background(), rec); err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
	return rec
}

var errUpstream = errors.New("upstream failure")

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
