package bruteforce

import (
	"fmt"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
)

// Index is a brute-force vector index supporting every metric.
type Index struct {
	metric vector.Metric
	vecs   [][]float32
	dim    int
	mags   []float32
}

// New creates an empty index ranking by metric.
func New(metric vector.Metric) *Index {
	return &Index{metric: metric}
}

// Build loads vectors and precomputes magnitudes.
func (i *Index) Build(vectors [][]float32) error {
	if !i.metric.Valid() {
		return fmt.Errorf("bruteforce: unsupported metric %q", i.metric)
	}
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	mags := make([]float32, len(vectors))
	for j := range vectors {
		mags[j] = vector.Magnitude(vectors[j])
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Query returns the top-k vectors under the index metric.
func (i *Index) Query(query []float32, k int) ([]index.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d: %w", len(query), i.dim, index.ErrDimensionMismatch)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	qm := vector.Magnitude(query)
	top := index.NewTopK(k)
	for j := range i.vecs {
		d := i.metric.Distance(query, qm, i.vecs[j], i.mags[j])
		top.Push(index.Neighbor{ID: j, Distance: d})
	}
	return top.Sorted(), nil
}

// Len returns the number of vectors.
func (i *Index) Len() int { return len(i.vecs) }

// Dim returns the vector dimension.
func (i *Index) Dim() int { return i.dim }

// Metric returns the ranking metric.
func (i *Index) Metric() vector.Metric { return i.metric }

// Kind returns index.KindBrute.
func (i *Index) Kind() index.Kind { return index.KindBrute }

var _ index.Index = (*Index)(nil)
