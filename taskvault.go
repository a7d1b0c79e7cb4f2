// Package taskvault provides a durable task store with semantic
// near-duplicate detection.
//
// Tasks are persisted to SQLite (or PostgreSQL with pgvector) together with
// an embedding of their name; similarity queries run over cosine distance
// and degrade transparently to substring search when no embedding provider
// is configured or a call fails.
//
// Example usage:
//
//	provider := taskvault.NewProvider(taskvault.ProviderConfig{
//	    OpenAIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	db, err := taskvault.Open("tasks.db", taskvault.Options{Embedder: provider})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	deduper := taskvault.NewDeduper(db)
//	res, err := deduper.Ingest(ctx, taskvault.TaskInput{
//	    Name:     "Reply to Bob about budget",
//	    Priority: taskvault.PriorityHigh,
//	    DueDate:  "2026-09-01",
//	}, "")
package taskvault

import (
	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/llm"
	"github.com/taskvault/taskvault/store"
)

// Core type aliases
type (
	TaskInput  = core.TaskInput
	TaskRecord = core.TaskRecord
	Priority   = core.Priority
)

const (
	PriorityHigh   = core.PriorityHigh
	PriorityMedium = core.PriorityMedium
	PriorityLow    = core.PriorityLow
)

// Error sentinels
var (
	ErrNotFound             = core.ErrNotFound
	ErrEmptyName            = core.ErrEmptyName
	ErrEmbeddingUnavailable = core.ErrEmbeddingUnavailable
	ErrDimensionMismatch    = core.ErrDimensionMismatch
)

// Store aliases
type (
	TaskStore    = store.TaskStore
	Options      = store.Options
	Deduper      = store.Deduper
	IngestResult = store.IngestResult
)

// DuplicateThreshold is the default cosine-distance cutoff for duplicates.
const DuplicateThreshold = store.DuplicateThreshold

// Open creates a task store for the DSN: a SQLite path (default tasks.db
// when empty) or a postgres:// connection string.
func Open(dsn string, opts Options) (TaskStore, error) {
	return store.New(dsn, opts)
}

// NewDeduper wraps a store with the ingestion-time deduplication policy.
func NewDeduper(s TaskStore) *Deduper {
	return store.NewDeduper(s)
}

// Embedding provider aliases
type (
	Provider       = llm.Provider
	ProviderConfig = llm.ProviderConfig
)

// NewProvider selects an embedding client from configuration; with no
// OpenAI key or Ollama URL the provider reports unavailability and the
// store degrades to text search.
func NewProvider(cfg ProviderConfig) *Provider {
	return llm.NewProvider(cfg)
}
