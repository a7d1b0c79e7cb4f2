package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskvault.yaml")
	data := `database_url: /tmp/tasks.db
openai_api_key: file-key
embedding_model: text-embedding-3-large
embedding_dimensions: 3072
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.DatabaseURL != "/tmp/tasks.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.OpenAIKey != "file-key" {
		t.Errorf("OpenAIKey = %q", cfg.OpenAIKey)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" || cfg.EmbeddingDimensions != 3072 {
		t.Errorf("embedding config = %q/%d", cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() of missing file = %v, want nil", err)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("unexpected config from missing file: %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskvault.yaml")
	if err := os.WriteFile(path, []byte("openai_api_key: file-key\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("TASKVAULT_DB", "env.db")
	t.Setenv("EMBEDDING_DIMENSIONS", "768")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.OpenAIKey != "env-key" {
		t.Errorf("OpenAIKey = %q, want env override", cfg.OpenAIKey)
	}
	if cfg.DatabaseURL != "env.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.EmbeddingDimensions != 768 {
		t.Errorf("EmbeddingDimensions = %d", cfg.EmbeddingDimensions)
	}
}

func TestTaskvaultDBWinsOverDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example/tasks")
	t.Setenv("TASKVAULT_DB", "local.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.DatabaseURL != "local.db" {
		t.Errorf("DatabaseURL = %q, want TASKVAULT_DB to win", cfg.DatabaseURL)
	}
}
