package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"research-summary/internal/history"
	"research-summary/internal/llm"
	redisdb "research-summary/internal/redis"
	"research-summary/internal/search"
)

var (
	ErrSearchUnavailable    = errors.New("search provider is not configured")
	ErrSummarizeUnavailable = errors.New("summary model is not configured")
	ErrEmptyQuery           = errors.New("query is required")
	ErrMissingInput         = errors.New("search results and query are required")
)

// SummarizeRequest mirrors the body of POST /api/summarize.
type SummarizeRequest struct {
	Query            string          `json:"query"`
	SearchResults    []search.Result `json:"searchResults"`
	UseCustomContent bool            `json:"useCustomContent,omitempty"`
	CustomContent    string          `json:"customContent,omitempty"`
}

// UsesCustomContent reports whether the request carries user material that
// replaces the search results.
func (r SummarizeRequest) UsesCustomContent() bool {
	return r.UseCustomContent && strings.TrimSpace(r.CustomContent) != ""
}

func (r SummarizeRequest) Validate() error {
	if r.UsesCustomContent() {
		return nil
	}
	if r.SearchResults == nil || strings.TrimSpace(r.Query) == "" {
		return ErrMissingInput
	}
	return nil
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
	ID      string `json:"id,omitempty"`
}

// Backend performs the two provider calls of a submission.
type Backend interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
	Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error)
}

// Cache is the subset of redisdb.Cache the service needs.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Recorder persists generated summaries.
type Recorder interface {
	Create(ctx context.Context, rec *history.Record) error
}

// Service runs searches and summaries in process. Searcher and Generator are
// nil when their provider key is missing; Enricher, Cache and History are
// optional.
type Service struct {
	Searcher  search.Provider
	Enricher  *search.Enricher
	Generator llm.Generator
	Cache     Cache
	History   Recorder
	Logger    *zap.Logger
}

func (s *Service) CanSearch() bool    { return s.Searcher != nil }
func (s *Service) CanSummarize() bool { return s.Generator != nil }

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Search returns at most search.MaxResults results for query.
func (s *Service) Search(ctx context.Context, query string) ([]search.Result, error) {
	if !s.CanSearch() {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := redisdb.Key("search", redisdb.NormalizeQuery(query))
	var cached []search.Result
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	results, err := s.Searcher.Search(ctx, query, search.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	results = search.Top(results, search.MaxResults)
	if s.Enricher != nil {
		results = s.Enricher.Enrich(ctx, results)
	}
	s.store(ctx, key, results)
	return results, nil
}

// Summarize builds the prompt, asks the model and records the result.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	if !s.CanSummarize() {
		return SummarizeResponse{}, ErrSummarizeUnavailable
	}
	if err := req.Validate(); err != nil {
		return SummarizeResponse{}, err
	}

	custom := ""
	if req.UsesCustomContent() {
		custom = req.CustomContent
	}
	prompt := llm.BuildPrompt(req.Query, req.SearchResults, custom)
	model := s.Generator.Model()
	key := redisdb.Key("summary", model, prompt)

	var text string
	if !s.lookup(ctx, key, &text) {
		out, err := s.Generator.Generate(ctx, prompt)
		if err != nil {
			return SummarizeResponse{}, fmt.Errorf("summarize %q: %w", req.Query, err)
		}
		text = out
		s.store(ctx, key, text)
	}

	resp := SummarizeResponse{Summary: text}
	if s.History != nil {
		rec, err := history.NewRecord(req.Query, custom, req.SearchResults, text, model)
		if err == nil {
			err = s.History.Create(ctx, rec)
		}
		if err != nil {
			s.logger().Warn("failed to record summary", zap.Error(err))
		} else {
			resp.ID = rec.ID
		}
	}
	return resp, nil
}

func (s *Service) lookup(ctx context.Context, key string, v any) bool {
	if s.Cache == nil {
		return false
	}
	hit, err := s.Cache.GetJSON(ctx, key, v)
	if err != nil {
		s.logger().Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetJSON(ctx, key, v); err != nil {
		s.logger().Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}
