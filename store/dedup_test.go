package store

import (
	"context"
	"testing"

	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/monitor"
)

func TestIngestSkipsDuplicate(t *testing.T) {
	// Two phrasings of the same task, embedded almost identically
	// (cosine distance well under the threshold).
	emb := &stubEmbedder{
		dim: 4,
		vecs: map[string][]float64{
			"Reply to Bob about budget": {1, 0, 0, 0},
			"Reply to Bob re: budget":   {0.999, 0.04, 0, 0},
		},
	}
	s, _ := openTestStore(t, Options{Embedder: emb})
	collector := monitor.NewInMemoryCollector()
	d := NewDeduper(s)
	d.SetCollector(collector)
	ctx := context.Background()

	first, err := d.Ingest(ctx, core.TaskInput{Name: "Reply to Bob about budget", Priority: core.PriorityHigh}, "")
	if err != nil {
		t.Fatalf("Ingest() = %v", err)
	}
	if first.Skipped {
		t.Fatal("first candidate skipped with an empty store")
	}

	second, err := d.Ingest(ctx, core.TaskInput{Name: "Reply to Bob re: budget", Priority: core.PriorityHigh}, "")
	if err != nil {
		t.Fatalf("Ingest() = %v", err)
	}
	if !second.Skipped {
		t.Fatal("near-duplicate not skipped")
	}
	if second.DuplicateOf == nil || second.DuplicateOf.ID != first.Record.ID {
		t.Errorf("DuplicateOf = %+v, want task %d", second.DuplicateOf, first.Record.ID)
	}

	tasks, err := s.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent() = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("store holds %d tasks, want exactly 1", len(tasks))
	}
	if got := collector.Snapshot().DuplicatesSkipped; got != 1 {
		t.Errorf("DuplicatesSkipped = %d, want 1", got)
	}
}

func TestIngestKeepsDistinctTasks(t *testing.T) {
	emb := &stubEmbedder{
		dim: 4,
		vecs: map[string][]float64{
			"Reply to Bob about budget": {1, 0, 0, 0},
			"Pay rent":                  {0, 1, 0, 0},
		},
	}
	s, _ := openTestStore(t, Options{Embedder: emb})
	d := NewDeduper(s)
	ctx := context.Background()

	for _, name := range []string{"Reply to Bob about budget", "Pay rent"} {
		res, err := d.Ingest(ctx, core.TaskInput{Name: name, Priority: core.PriorityMedium}, "")
		if err != nil {
			t.Fatalf("Ingest(%q) = %v", name, err)
		}
		if res.Skipped {
			t.Errorf("distinct task %q skipped", name)
		}
	}

	tasks, _ := s.GetRecent(ctx, 10)
	if len(tasks) != 2 {
		t.Errorf("store holds %d tasks, want 2", len(tasks))
	}
}

func TestIngestNeverSuppressesOnFallback(t *testing.T) {
	// No embedder: the pre-check runs as substring search and returns
	// matches without distances, which must never suppress.
	s, _ := openTestStore(t, Options{})
	d := NewDeduper(s)
	ctx := context.Background()

	if _, err := d.Ingest(ctx, core.TaskInput{Name: "Submit report", Priority: core.PriorityLow}, ""); err != nil {
		t.Fatalf("Ingest() = %v", err)
	}

	// "Submit" is a substring of the stored name, so the pre-check finds
	// a hit; without a distance the candidate is still stored.
	res, err := d.Ingest(ctx, core.TaskInput{Name: "Submit", Priority: core.PriorityLow}, "")
	if err != nil {
		t.Fatalf("Ingest() = %v", err)
	}
	if res.Skipped {
		t.Error("fallback match suppressed an insert")
	}

	tasks, _ := s.GetRecent(ctx, 10)
	if len(tasks) != 2 {
		t.Errorf("store holds %d tasks, want 2", len(tasks))
	}
}

func TestIngestCustomThreshold(t *testing.T) {
	emb := &stubEmbedder{
		dim: 4,
		vecs: map[string][]float64{
			"buy milk":     {1, 0, 0, 0},
			"buy oat milk": {0.8, 0.6, 0, 0}, // distance 0.2
		},
	}
	s, _ := openTestStore(t, Options{Embedder: emb})
	ctx := context.Background()

	if _, err := s.Add(ctx, core.TaskInput{Name: "buy milk", Priority: core.PriorityLow}, ""); err != nil {
		t.Fatalf("Add() = %v", err)
	}

	// Under the default threshold 0.1 this is distinct; a looser
	// threshold treats it as a duplicate.
	loose := NewDeduperWithThreshold(s, 0.3)
	res, err := loose.Ingest(ctx, core.TaskInput{Name: "buy oat milk", Priority: core.PriorityLow}, "")
	if err != nil {
		t.Fatalf("Ingest() = %v", err)
	}
	if !res.Skipped {
		t.Error("candidate under loosened threshold not skipped")
	}
}
