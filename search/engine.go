// Package search runs kNN queries against a loaded index and converts the
// index distances into client-facing scores.
package search

import (
	"errors"
	"fmt"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
)

var (
	// ErrInvalidK is returned for k < 1.
	ErrInvalidK = errors.New("search: k must be at least 1")
	// ErrDimensionMismatch is returned when the query length differs from the index dimension.
	ErrDimensionMismatch = errors.New("search: query dimension mismatch")
)

// Hit is one ranked result.
type Hit struct {
	// ID is the document id, equal to the vector position.
	ID int
	// Score is the similarity for cosine and inner_product, the distance for l2.
	Score float64
}

// Engine answers top-k queries. It holds no mutable state and is safe for
// concurrent use once the index is built.
type Engine struct {
	idx index.Index
	dim int
}

// New creates an engine over idx. dim is the expected query dimension; 0
// takes it from the index.
func New(idx index.Index, dim int) *Engine {
	if dim == 0 {
		dim = idx.Dim()
	}
	return &Engine{idx: idx, dim: dim}
}

// Len returns the number of indexed vectors.
func (e *Engine) Len() int { return e.idx.Len() }

// Dim returns the expected query dimension.
func (e *Engine) Dim() int { return e.dim }

// Metric returns the ranking metric.
func (e *Engine) Metric() vector.Metric { return e.idx.Metric() }

// Search returns min(k, N) hits ordered by (distance, id).
func (e *Engine) Search(query []float32, k int) ([]Hit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != e.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), e.dim)
	}
	n := e.idx.Len()
	if n == 0 {
		return []Hit{}, nil
	}
	if k > n {
		k = n
	}
	neighbors, err := e.idx.Query(query, k)
	if err != nil {
		if errors.Is(err, index.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
		}
		return nil, err
	}
	metric := e.idx.Metric()
	hits := make([]Hit, len(neighbors))
	for i, nb := range neighbors {
		hits[i] = Hit{ID: nb.ID, Score: metric.Score(nb.Distance)}
	}
	return hits, nil
}
