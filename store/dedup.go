package store

import (
	"context"
	"fmt"

	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/monitor"
)

// DuplicateThreshold is the cosine distance below which a candidate is
// treated as a duplicate of an existing task. It is an asserted constant
// tuned for text-embedding-3-small-class models, not a derived value;
// callers with other models may want NewDeduperWithThreshold.
const DuplicateThreshold = 0.1

// IngestResult reports what happened to a candidate task.
type IngestResult struct {
	// Record is the stored task; zero when Skipped.
	Record core.TaskRecord
	// Skipped is true when the candidate was dropped as a duplicate.
	Skipped bool
	// DuplicateOf is the existing task the candidate matched, when Skipped.
	DuplicateOf *core.TaskRecord
}

// Deduper wraps a task store with the ingestion-time deduplication policy:
// a candidate is dropped only when an existing task carries an explicit
// similarity distance below the threshold. Fallback results carry no
// distance and therefore never suppress; absence of a distance is never
// conflated with "close enough".
type Deduper struct {
	store     TaskStore
	threshold float64
	collector monitor.Collector
}

func NewDeduper(store TaskStore) *Deduper {
	return NewDeduperWithThreshold(store, DuplicateThreshold)
}

func NewDeduperWithThreshold(store TaskStore, threshold float64) *Deduper {
	return &Deduper{
		store:     store,
		threshold: threshold,
		collector: monitor.NewNoOpCollector(),
	}
}

// SetCollector routes duplicate-skip events to c.
func (d *Deduper) SetCollector(c monitor.Collector) {
	if c != nil {
		d.collector = c
	}
}

// Ingest runs the similarity pre-check and persists the candidate unless it
// is a duplicate. Errors from the pre-check (dimension mismatch,
// persistence failure) propagate; the store itself handles degradation.
func (d *Deduper) Ingest(ctx context.Context, task core.TaskInput, emailContext string) (IngestResult, error) {
	matches, err := d.store.FindSimilar(ctx, task.Name, 1)
	if err != nil {
		return IngestResult{}, fmt.Errorf("duplicate pre-check: %w", err)
	}

	if len(matches) > 0 && matches[0].SimilarityDistance != nil && *matches[0].SimilarityDistance < d.threshold {
		dup := matches[0]
		d.collector.Record(monitor.EventDuplicateSkipped)
		return IngestResult{Skipped: true, DuplicateOf: &dup}, nil
	}

	rec, err := d.store.Add(ctx, task, emailContext)
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{Record: rec}, nil
}
