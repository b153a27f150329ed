package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Host          string `json:"host" env:"APP_HOST"`
		Port          int    `json:"port" env:"APP_PORT"`
		Subpath       string `json:"subpath" env:"APP_SUBPATH"`
		ShareSecret   string `json:"shareSecret" env:"SHARE_SECRET"`
		ShareTTLHours int    `json:"share_ttl_hours" env:"SHARE_TTL_HOURS"`
	} `json:"server"`
	SerpAPI struct {
		APIKey         string `json:"api_key" env:"SERPAPI_KEY"`
		BaseURL        string `json:"base_url" env:"SERPAPI_BASE_URL"`
		TimeoutSeconds int    `json:"timeout_seconds"`
		Enrich         bool   `json:"enrich" env:"SEARCH_ENRICH"`
	} `json:"serpapi"`
	Gemini struct {
		APIKey         string `json:"api_key" env:"GEMINI_API_KEY"`
		Model          string `json:"model" env:"GEMINI_MODEL"`
		BaseURL        string `json:"base_url" env:"GEMINI_BASE_URL"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"gemini"`
	Database struct {
		Driver string `json:"driver" env:"DATABASE_DRIVER"`
		DSN    string `json:"dsn" env:"DATABASE_DSN"`
	} `json:"database"`
	Redis struct {
		Addr       string `json:"addr" env:"REDIS_ADDR"`
		Password   string `json:"password" env:"REDIS_PASSWORD"`
		DB         int    `json:"db" env:"REDIS_DB"`
		TTLMinutes int    `json:"ttl_minutes"`
	} `json:"redis"`
	Log struct {
		Level       string `json:"level" env:"LOG_LEVEL"`
		File        string `json:"file" env:"LOG_FILE"`
		Development bool   `json:"development" env:"LOG_DEVELOPMENT"`
	} `json:"log"`
	Research struct {
		StartDelayMs   int `json:"start_delay_ms"`
		SourcesDelayMs int `json:"sources_delay_ms"`
		TickIntervalMs int `json:"tick_interval_ms"`
	} `json:"research"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton). A missing file is not
// an error; values then come from .env, the environment and defaults.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		// .env never overrides variables that are already set
		_ = godotenv.Load()

		var c Config
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		default:
			if err := json.Unmarshal(raw, &c); err != nil {
				cfgErr = fmt.Errorf("invalid config format: %w", err)
				return
			}
		}

		if err := env.Parse(&c); err != nil {
			cfgErr = fmt.Errorf("invalid environment: %w", err)
			return
		}
		applyDefaults(&c)
		if err := validate(&c); err != nil {
			cfgErr = err
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	c.Server.Subpath = NormalizeSubpath(c.Server.Subpath)
	if c.Server.ShareTTLHours == 0 {
		c.Server.ShareTTLHours = 24 * 7
	}
	if c.SerpAPI.TimeoutSeconds == 0 {
		c.SerpAPI.TimeoutSeconds = 15
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Gemini.TimeoutSeconds == 0 {
		c.Gemini.TimeoutSeconds = 120
	}
	if c.Redis.TTLMinutes == 0 {
		c.Redis.TTLMinutes = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Research.StartDelayMs == 0 {
		c.Research.StartDelayMs = 1000
	}
	if c.Research.SourcesDelayMs == 0 {
		c.Research.SourcesDelayMs = 800
	}
	if c.Research.TickIntervalMs == 0 {
		c.Research.TickIntervalMs = 1500
	}
}

func validate(c *Config) error {
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return errors.New("database dsn must be set when a driver is configured")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// NormalizeSubpath returns "" or a path with a leading slash and no trailing slash.
func NormalizeSubpath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
