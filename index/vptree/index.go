package vptree

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/internal/cover/tree"
	"github.com/viant/vecserve/vector"
)

// Index implements a kNN index using a VP-tree to prune search.
// It is persisted in the shared index layout and rebuilt on load.
//
// The tree partitions by Euclidean distance; under cosine it is built over
// unit vectors, where chord length orders pairs like cosine distance does.
// Candidates are re-scored with the exact metric distance.
type Index struct {
	metric vector.Metric
	vecs   [][]float32
	mags   []float32
	space  [][]float32 // vectors the tree partitions
	dim    int
	root   *node
	zeros  []int
}

type node struct {
	idx   int // position in vecs
	thr   float64
	left  *node
	right *node
}

// New creates an empty VP-tree ranking by metric (cosine or l2).
func New(metric vector.Metric) *Index {
	return &Index{metric: metric}
}

// Build constructs the VP-tree and caches magnitudes.
func (i *Index) Build(vectors [][]float32) error {
	switch i.metric {
	case vector.Cosine, vector.L2:
	default:
		return fmt.Errorf("vptree: unsupported metric %q", i.metric)
	}
	dim, err := index.CheckVectors(vectors)
	if err != nil {
		return fmt.Errorf("vptree: %w", err)
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.mags = make([]float32, len(vectors))
	i.space = i.vecs
	i.dim = dim
	i.zeros = nil
	idxs := make([]int, 0, len(vectors))
	if i.metric == vector.Cosine {
		i.space = make([][]float32, len(vectors))
	}
	for j := range vectors {
		i.mags[j] = vector.Magnitude(vectors[j])
		if i.metric == vector.Cosine {
			if i.mags[j] == 0 {
				i.zeros = append(i.zeros, j)
				continue
			}
			i.space[j] = vector.Normalize(vectors[j])
		}
		idxs = append(idxs, j)
	}
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) distance(a, b int) float64 {
	return vector.EuclideanDistance(i.space[a], i.space[b])
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// last element is the vantage point so the build is deterministic
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(idxs))
	for k, j := range idxs {
		dists[k] = i.distance(vp, j)
	}
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		if dists[order[a]] != dists[order[b]] {
			return dists[order[a]] < dists[order[b]]
		}
		return idxs[order[a]] < idxs[order[b]]
	})
	mid := len(order) / 2
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(order)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  i.buildVP(leftIdxs),
		right: i.buildVP(rightIdxs),
	}
}

// Query returns up to k neighbors ordered by (distance, id).
func (i *Index) Query(query []float32, k int) ([]index.Neighbor, error) {
	if len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("vptree: query dim %d != index dim %d: %w", len(query), i.dim, index.ErrDimensionMismatch)
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
		for j := 0; j < k; j++ {
			push(j)
		}
		return top.Sorted(), nil
	}
	q := query
	if i.metric == vector.Cosine {
		q = vector.Normalize(query)
	}
	tau := func() float64 {
		w, ok := top.Worst()
		if !ok || !top.Full() {
			return math.Inf(1)
		}
		bound := w.Distance
		if i.metric == vector.Cosine {
			bound = tree.CosineBound(bound)
		}
		return bound + 1e-4 + bound*1e-5
	}
	var search func(n *node)
	search = func(n *node) {
		if n == nil {
			return
		}
		d := vector.EuclideanDistance(q, i.space[n.idx])
		push(n.idx)
		if n.left == nil && n.right == nil {
			return
		}
		// triangle inequality; equal bounds are visited to keep id tie-breaks exact
		if d < n.thr {
			if d-tau() <= n.thr {
				search(n.left)
			}
			if d+tau() >= n.thr {
				search(n.right)
			}
		} else {
			if d+tau() >= n.thr {
				search(n.right)
			}
			if d-tau() <= n.thr {
				search(n.left)
			}
		}
	}
	search(i.root)
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

// Kind returns index.KindVPTree.
func (i *Index) Kind() index.Kind { return index.KindVPTree }

var _ index.Index = (*Index)(nil)
