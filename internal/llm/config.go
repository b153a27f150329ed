package llm

import "time"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config controls the Gemini client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint, mostly for tests.
	BaseURL string
	Timeout time.Duration
}
