// Package store implements the durable task store with semantic similarity
// search and transparent degradation to substring text search.
package store

import (
	"context"
	"log/slog"

	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/monitor"
)

// Defaults for result limits and the backing file.
const (
	DefaultSimilarLimit = 5
	DefaultRecentLimit  = 10
	DefaultSQLitePath   = "tasks.db"
)

// Embedder turns text into a fixed-length vector, or reports unavailability.
// llm.Provider satisfies this.
type Embedder interface {
	Available() bool
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// TaskStore owns persistence of task records and mediates between vector
// similarity and text fallback search.
type TaskStore interface {
	// Add persists a candidate task, assigning id and created_at. An
	// embedding of the name (plus context, if given) is stored alongside
	// the row when the provider produces one; embedding failure is
	// non-fatal to the write path.
	Add(ctx context.Context, task core.TaskInput, emailContext string) (core.TaskRecord, error)

	// FindSimilar returns up to limit tasks similar to the query. The
	// vector path attaches SimilarityDistance; when embeddings are
	// unavailable or the index fails, results come from case-insensitive
	// substring matching on name ordered by recency, with no distance.
	// A dimension mismatch is the one error that is never degraded.
	FindSimilar(ctx context.Context, query string, limit int) ([]core.TaskRecord, error)

	// GetRecent returns up to limit tasks ordered by created_at
	// descending, ties broken by higher id first. No similarity scoring.
	GetRecent(ctx context.Context, limit int) ([]core.TaskRecord, error)

	// Delete removes a task by id and reports whether it existed. Any
	// index entry for the id is dropped with the row.
	Delete(ctx context.Context, id int64) (bool, error)

	// Complete is an alias for Delete: tasks carry no status field, so
	// completing one removes it.
	Complete(ctx context.Context, id int64) (bool, error)

	Close() error
}

// Options configures a store. Zero values are usable: no embedder means
// permanent text fallback, the collector defaults to a no-op, the logger to
// slog.Default().
type Options struct {
	Embedder  Embedder
	Collector monitor.Collector
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Collector == nil {
		o.Collector = monitor.NewNoOpCollector()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// embedderReady reports whether e can be asked for vectors at all.
func embedderReady(e Embedder) bool {
	return e != nil && e.Available()
}

// embedText builds the text that gets embedded for a task: the name,
// enriched with the email context when present.
func embedText(name, emailContext string) string {
	if emailContext == "" {
		return name
	}
	return name + " Context: " + emailContext
}
