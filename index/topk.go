package index

import (
	"container/heap"
	"sort"
)

// TopK keeps the k best neighbors seen so far. The worst retained neighbor
// sits at the heap root so a full set can be tested and replaced in O(log k).
type TopK struct {
	k     int
	items worstFirst
}

// NewTopK creates a collector for k neighbors; k must be positive.
func NewTopK(k int) *TopK {
	if k < 1 {
		k = 1
	}
	return &TopK{k: k, items: make(worstFirst, 0, k)}
}

// Push offers a candidate and reports whether it was retained.
func (t *TopK) Push(n Neighbor) bool {
	if len(t.items) < t.k {
		heap.Push(&t.items, n)
		return true
	}
	if !Less(n, t.items[0]) {
		return false
	}
	t.items[0] = n
	heap.Fix(&t.items, 0)
	return true
}

// Full reports whether k neighbors are held.
func (t *TopK) Full() bool { return len(t.items) == t.k }

// Len returns the number of retained neighbors.
func (t *TopK) Len() int { return len(t.items) }

// Worst returns the current k-th best neighbor.
func (t *TopK) Worst() (Neighbor, bool) {
	if len(t.items) == 0 {
		return Neighbor{}, false
	}
	return t.items[0], true
}

// Sorted returns the retained neighbors ordered best first.
func (t *TopK) Sorted() []Neighbor {
	out := make([]Neighbor, len(t.items))
	copy(out, t.items)
	sort.Slice(out, func(a, b int) bool { return Less(out[a], out[b]) })
	return out
}

// worstFirst implements heap.Interface as a max-heap on (Distance, ID).
type worstFirst []Neighbor

func (h worstFirst) Len() int            { return len(h) }
func (h worstFirst) Less(i, j int) bool  { return Less(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *worstFirst) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
