package facematch

import (
	"fmt"
	"strings"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

// Config selects and parameterizes the face-recognition provider.
type Config struct {
	Provider          string  `toml:"provider"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// NewClient builds a face-match client for the configured provider.
func NewClient(cfg Config, log *logging.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "http":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("facematch provider 'http' requires base_url")
		}
		return NewHTTPClient(cfg, log), nil

	case "mock", "":
		// Default for development: deterministic local matcher.
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unsupported facematch provider: %s", cfg.Provider)
	}
}
