package cover

import (
	"fmt"
	"math"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/internal/cover/tree"
	"github.com/viant/vecserve/vector"
)

// DefaultBase is the cover tree expansion base.
const DefaultBase = 1.3

// Index implements index.Index on top of the internal cover tree. The tree
// prunes candidates; every visited candidate is re-scored with the exact
// metric distance so results match the brute-force scan.
type Index struct {
	metric vector.Metric
	base   float32
	vecs   [][]float32
	mags   []float32
	dim    int
	tree   *tree.Tree
	// zeros holds zero-magnitude vectors under cosine; they sit at distance 1
	// from every query and cannot be projected onto the unit sphere.
	zeros []int
}

// Option customizes the index.
type Option func(*Index)

// WithBase overrides the expansion base.
func WithBase(base float32) Option {
	return func(i *Index) { i.base = base }
}

// New creates an empty cover-tree index ranking by metric (cosine or l2).
func New(metric vector.Metric, opts ...Option) *Index {
	ret := &Index{metric: metric, base: DefaultBase}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func distanceFunction(metric vector.Metric) (tree.DistanceFunction, error) {
	switch metric {
	case vector.Cosine:
		return tree.DistanceFunctionCosine, nil
	case vector.L2:
		return tree.DistanceFunctionEuclidean, nil
	}
	return "", fmt.Errorf("cover: unsupported metric %q", metric)
}

// Build inserts every vector into a fresh tree and seals it.
func (i *Index) Build(vectors [][]float32) error {
	fn, err := distanceFunction(i.metric)
	if err != nil {
		return err
	}
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.mags = make([]float32, len(vectors))
	i.dim = dim
	i.zeros = nil
	i.tree = tree.NewTree(i.base, fn)
	for j, v := range vectors {
		i.mags[j] = vector.Magnitude(v)
		if i.metric == vector.Cosine && i.mags[j] == 0 {
			i.zeros = append(i.zeros, j)
			continue
		}
		p := tree.NewPoint(j, append([]float32(nil), v...)...)
		p.Magnitude = i.mags[j]
		i.tree.Insert(p)
	}
	i.tree.Seal()
	return nil
}

// Query returns up to k neighbors ordered by (distance, id).
func (i *Index) Query(query []float32, k int) ([]index.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: query dim %d != index dim %d: %w", len(query), i.dim, index.ErrDimensionMismatch)
	}
	if k <= 0 || k > len(i.vecs) {
		k = len(i.vecs)
	}
	qm := vector.Magnitude(query)
	top := index.NewTopK(k)
	push := func(id int) {
		top.Push(index.Neighbor{ID: id, Distance: i.metric.Distance(query, qm, i.vecs[id], i.mags[id])})
	}
	if i.metric == vector.Cosine && qm == 0 {
		// every candidate is at distance 1, ids decide
		for j := 0; j < k; j++ {
			push(j)
		}
		return top.Sorted(), nil
	}
	bound := func() float64 {
		w, ok := top.Worst()
		if !ok || !top.Full() {
			return math.Inf(1)
		}
		if i.metric == vector.Cosine {
			return tree.CosineBound(w.Distance)
		}
		return w.Distance
	}
	i.tree.Search(query, bound, func(p *tree.Point) { push(p.ID) })
	for _, id := range i.zeros {
		push(id)
	}
	return top.Sorted(), nil
}

// Len returns the number of vectors.
func (i *Index) Len() int { return len(i.vecs) }

// Dim returns the vector dimension.
func (i *Index) Dim() int { return i.dim }

// Metric returns the ranking metric.
func (i *Index) Metric() vector.Metric { return i.metric }

// Kind returns index.KindCover.
func (i *Index) Kind() index.Kind { return index.KindCover }

var _ index.Index = (*Index)(nil)
