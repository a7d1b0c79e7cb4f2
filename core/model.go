// Package core defines the task model and error sentinels shared across the module.
package core

// Priority is the conventional task priority: 1 = high, 2 = medium, 3 = low.
// The store accepts any integer; rendering of out-of-range values is the
// consumer's concern.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

var priorityNames = map[Priority]string{
	PriorityHigh:   "high",
	PriorityMedium: "medium",
	PriorityLow:    "low",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// TaskInput is a candidate task supplied by a caller. The store assigns
// identity and timestamps on insert.
type TaskInput struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	DueDate  string   `json:"due_date"` // ISO-8601 date, stored opaquely
}

// TaskRecord is the unit of storage. Records are immutable once written;
// deletion is the only mutation.
type TaskRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Priority     Priority  `json:"priority"`
	DueDate      string    `json:"due_date"`
	CreatedAt    string    `json:"created_at"` // ISO-8601, assigned by the store
	EmailContext string    `json:"email_context,omitempty"`
	Embedding    []float64 `json:"embedding,omitempty"`

	// SimilarityDistance is the cosine distance to the query vector,
	// populated only on results of a vector similarity search. It stays
	// nil on plain reads and on text-fallback results; nil and zero mean
	// different things.
	SimilarityDistance *float64 `json:"similarity_distance,omitempty"`
}
