package research

import (
	"context"
	"encoding/json"
	"sync"

	"research-summary/internal/history"
	"research-summary/internal/search"
)

type fakeBackend struct {
	mu           sync.Mutex
	results      []search.Result
	summary      string
	searchErr    error
	summarizeErr error
	searchCalls  int
	lastRequest  SummarizeRequest
	// when set, Summarize blocks until it is closed
	gate chan struct{}
	// when set, Summarize calls it before answering
	during func()
}

func (f *fakeBackend) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.results, f.searchErr
}

func (f *fakeBackend) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	f.mu.Lock()
	f.lastRequest = req
	gate, during := f.gate, f.during
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if during != nil {
		during()
	}
	if f.summarizeErr != nil {
		return SummarizeResponse{}, f.summarizeErr
	}
	return SummarizeResponse{Summary: f.summary, ID: "rec-1"}, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	results []search.Result
	err     error
	calls   int
}

func (p *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.results, p.err
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *fakeGenerator) Model() string { return "fake-model" }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func (m *memCache) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

type memRecorder struct {
	records []*history.Record
}

func (r *memRecorder) Create(ctx context.Context, rec *history.Record) error {
	rec.ID = "generated-id"
	r.records = append(r.records, rec)
	return nil
}

func sampleResults(n int) []search.Result {
	out := make([]search.Result, n)
	for i := range out {
		out[i] = search.Result{
			Title:   "Title " + string(rune('A'+i)),
			Link:    "https://example.com/" + string(rune('a'+i)),
			Snippet: "snippet",
		}
	}
	return out
}

const sampleSummary = "## OVERVIEW\nGraph networks.\n\n## CORE INSIGHTS\n* **Message passing** is central\n* Pooling\n\n## GAPS & CHALLENGES\n* Scale\n\n## VIEWPOINTS\n- Spectral vs spatial\n\n## PROJECT IDEAS\n* Build a benchmark\n"
