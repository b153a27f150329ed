package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"research-summary/internal/config"
	"research-summary/internal/db"
	"research-summary/internal/history"
	"research-summary/internal/llm"
	"research-summary/internal/logging"
	redisdb "research-summary/internal/redis"
	"research-summary/internal/research"
	"research-summary/internal/search"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "research-summary",
	Short: "Generate structured research summaries from web search results",
	Long: `research-summary searches the web for a topic, asks Gemini for a summary in
five fixed sections (overview, core insights, gaps & challenges, viewpoints,
project ideas) and serves the result as a tabbed page.

Run "serve" for the web application or "ask" for a one-off summary in the
terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// buildService wires the providers, cache and history store that are
// configured. Missing provider keys leave the matching field nil.
func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*research.Service, *history.Store, error) {
	svc := &research.Service{Logger: logger}

	if cfg.SerpAPI.APIKey != "" {
		timeout := time.Duration(cfg.SerpAPI.TimeoutSeconds) * time.Second
		svc.Searcher = search.NewSerpAPIClient(cfg.SerpAPI.APIKey, cfg.SerpAPI.BaseURL, timeout)
		if cfg.SerpAPI.Enrich {
			svc.Enricher = search.NewEnricher(timeout, logger)
		}
	} else {
		logger.Warn("SERPAPI_KEY not set, search is unavailable")
	}

	if cfg.Gemini.APIKey != "" {
		gen, err := llm.NewGemini(ctx, &llm.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		svc.Generator = gen
	} else {
		logger.Warn("GEMINI_API_KEY not set, summaries are unavailable")
	}

	if rdb := redisdb.NewClient(cfg); rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			svc.Cache = redisdb.NewCache(rdb, time.Duration(cfg.Redis.TTLMinutes)*time.Minute)
			logger.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if err := db.Init(cfg, logger); err != nil {
		return nil, nil, fmt.Errorf("DB init error: %w", err)
	}
	var store *history.Store
	if db.DB != nil {
		store = history.NewStore(db.DB)
		svc.History = store
	}
	return svc, store, nil
}

func pacingFrom(cfg *config.Config) research.Pacing {
	p := research.DefaultPacing()
	p.StartDelay = time.Duration(cfg.Research.StartDelayMs) * time.Millisecond
	p.SourcesDelay = time.Duration(cfg.Research.SourcesDelayMs) * time.Millisecond
	p.TickInterval = time.Duration(cfg.Research.TickIntervalMs) * time.Millisecond
	return p
}
