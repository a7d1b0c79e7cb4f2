// Package monitor provides in-process counters for store operations.
package monitor

import "sync"

// Event is a countable store operation.
type Event int

const (
	EventAdd Event = iota
	EventDelete
	EventVectorSearch
	EventFallbackSearch
	EventEmbedFailure
	EventDuplicateSkipped
)

// StoreStats is a point-in-time snapshot of operation counts.
type StoreStats struct {
	Adds              int64 `json:"adds"`
	Deletes           int64 `json:"deletes"`
	VectorSearches    int64 `json:"vector_searches"`
	FallbackSearches  int64 `json:"fallback_searches"`
	EmbedFailures     int64 `json:"embed_failures"`
	DuplicatesSkipped int64 `json:"duplicates_skipped"`
}

// Collector records store events.
type Collector interface {
	Record(e Event)
	Snapshot() StoreStats
}

// InMemoryCollector counts events behind a mutex.
type InMemoryCollector struct {
	mu    sync.Mutex
	stats StoreStats
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{}
}

func (c *InMemoryCollector) Record(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e {
	case EventAdd:
		c.stats.Adds++
	case EventDelete:
		c.stats.Deletes++
	case EventVectorSearch:
		c.stats.VectorSearches++
	case EventFallbackSearch:
		c.stats.FallbackSearches++
	case EventEmbedFailure:
		c.stats.EmbedFailures++
	case EventDuplicateSkipped:
		c.stats.DuplicatesSkipped++
	}
}

func (c *InMemoryCollector) Snapshot() StoreStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = StoreStats{}
}

// NoOpCollector discards all events.
type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(e Event) {}

func (c *NoOpCollector) Snapshot() StoreStats {
	return StoreStats{}
}
