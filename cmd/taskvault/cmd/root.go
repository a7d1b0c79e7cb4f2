package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/config"
	"github.com/taskvault/taskvault/llm"
	"github.com/taskvault/taskvault/store"
)

var (
	// configPath is the path to the optional YAML config file
	configPath string
	// dbDSN overrides the backing store location
	dbDSN string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskvault",
	Short: "Durable task store with semantic duplicate detection",
	Long: `taskvault keeps short task records in a local SQLite file (or a
PostgreSQL database with pgvector) and detects near-duplicate entries by
embedding similarity. Without embedding credentials it degrades to plain
text search.

Examples:
  # Add a task, skipping it if a near-duplicate already exists
  taskvault add "Reply to Bob about budget" --priority 1 --due 2026-09-01

  # List the most recent tasks
  taskvault list

  # Semantic search (text search when embeddings are unavailable)
  taskvault similar "budget email"

  # Complete (remove) a task
  taskvault complete 3`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "SQLite path or postgres:// DSN (defaults to $TASKVAULT_DB, then tasks.db)")
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.taskvault.yaml"
	}
	return ""
}

// openStore builds the store (and its embedding provider) from config file,
// environment, and flags.
func openStore() (store.TaskStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbDSN != "" {
		cfg.DatabaseURL = dbDSN
	}

	provider := llm.NewProvider(llm.ProviderConfig{
		OpenAIKey:  cfg.OpenAIKey,
		OllamaURL:  cfg.OllamaURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})

	s, err := store.New(cfg.DatabaseURL, store.Options{Embedder: provider})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}
