package redisdb

import (
	"github.com/redis/go-redis/v9"

	"research-summary/internal/config"
)

// NewClient returns nil when no redis address is configured.
func NewClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
