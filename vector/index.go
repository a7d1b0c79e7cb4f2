package vector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/taskvault/taskvault/core"
)

// Match is a single top-k hit: a stored id and its cosine distance to the
// query vector, where 0 means identical direction.
type Match struct {
	ID       int64
	Distance float64
}

// MemoryIndex is an append-oriented in-memory vector index using brute-force
// cosine distance. Vectors are added one at a time without a rebuild.
//
// All vectors in an index share one dimension, fixed by the first Add. A
// vector or query of any other length is a configuration error
// (core.ErrDimensionMismatch), never a skip-this-row condition.
type MemoryIndex struct {
	mu   sync.RWMutex
	dim  int
	vecs map[int64][]float64
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		vecs: make(map[int64][]float64),
	}
}

// Add registers a vector under the given id, replacing any previous entry.
func (ix *MemoryIndex) Add(id int64, vec []float64) error {
	if len(vec) == 0 {
		return fmt.Errorf("add vector %d: empty vector", id)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dim == 0 {
		ix.dim = len(vec)
	} else if len(vec) != ix.dim {
		return fmt.Errorf("add vector %d: got dimension %d, index holds %d: %w",
			id, len(vec), ix.dim, core.ErrDimensionMismatch)
	}

	ix.vecs[id] = vec
	return nil
}

// Remove drops the vector for id, if present.
func (ix *MemoryIndex) Remove(id int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.vecs, id)
}

// TopK returns the k nearest stored vectors by cosine distance, closest
// first. An empty index returns an empty slice.
func (ix *MemoryIndex) TopK(query []float64, k int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vecs) == 0 {
		return []Match{}, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d, index holds %d: %w",
			len(query), ix.dim, core.ErrDimensionMismatch)
	}

	matches := make([]Match, 0, len(ix.vecs))
	for id, vec := range ix.vecs {
		matches = append(matches, Match{ID: id, Distance: CosineDistance(query, vec)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID > matches[j].ID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len returns the number of vectors in the index.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vecs)
}

// Dimension returns the index's vector dimension, 0 while empty.
func (ix *MemoryIndex) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}
