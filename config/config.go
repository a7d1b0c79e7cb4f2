// Package config loads taskvault settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything needed to construct a store and its embedding
// provider. All fields are optional; zero values fall back to defaults
// (SQLite at tasks.db, no embedding provider, text-embedding-3-small/1536).
type Config struct {
	// DatabaseURL is a SQLite path or a postgres:// connection string.
	DatabaseURL string `yaml:"database_url"`

	OpenAIKey string `yaml:"openai_api_key"`
	OllamaURL string `yaml:"ollama_url"`

	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
}

// Load reads path (skipped if empty or missing) and applies environment
// overrides: TASKVAULT_DB or DATABASE_URL, OPENAI_API_KEY, OLLAMA_URL,
// EMBEDDING_MODEL, EMBEDDING_DIMENSIONS.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKVAULT_DB"); v != "" {
		cfg.DatabaseURL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIKey = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EmbeddingDimensions = n
		}
	}
}
