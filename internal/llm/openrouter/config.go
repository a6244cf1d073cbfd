package openrouter

import "time"

// Config holds the OpenRouter client configuration.
type Config struct {
	URL     string // API base, without the /chat/completions suffix.
	Model   string // Used when a call does not set llm.WithModel.
	Timeout time.Duration

	// Optional attribution headers understood by OpenRouter.
	Referer string
	Title   string
}

// DefaultConfig returns the public OpenRouter endpoint and defaults.
func DefaultConfig() Config {
	return Config{
		URL:     "https://openrouter.ai/api/v1",
		Model:   "google/gemini-2.5-flash",
		Timeout: 5 * time.Minute,
		Title:   "orq",
	}
}
