package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/dedupe"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/facematch"
	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/logging"
)

type StoreConfig struct {
	// Provider is "memgraph" or "memory" (development only).
	Provider string `toml:"provider"`
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Config struct {
	Store     StoreConfig       `toml:"store"`
	FaceMatch facematch.Config  `toml:"facematch"`
	Dedupe    dedupe.Thresholds `toml:"dedupe"`
	Log       logging.Config    `toml:"log"`
}

// Default returns the configuration used when no config file is present:
// local Memgraph, mock face matcher, production thresholds.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Provider: "memgraph",
			URI:      "bolt://localhost:7687",
		},
		FaceMatch: facematch.Config{Provider: "mock"},
		Dedupe:    dedupe.DefaultThresholds(),
		Log:       logging.Config{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file configuration with environment variables when
// they are present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STORE_PROVIDER"); v != "" {
		c.Store.Provider = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Store.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := os.Getenv("FACEMATCH_PROVIDER"); v != "" {
		c.FaceMatch.Provider = v
	}
	if v := os.Getenv("FACEMATCH_BASE_URL"); v != "" {
		c.FaceMatch.BaseURL = v
	}
	if v := os.Getenv("FACEMATCH_API_KEY"); v != "" {
		c.FaceMatch.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
