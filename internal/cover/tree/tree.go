package tree

// This implementation is adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"math"

	"github.com/viant/vecserve/vector"
)

// widen loosens a pruning bound so float32 rounding in the tree never
// discards a subtree the caller's exact distance would keep.
func widen(bound float64) float64 {
	return bound + 1e-4 + bound*1e-5
}

// Tree is a cover tree for exact cosine/euclidean kNN queries. It is built
// by Insert calls followed by one Seal; a sealed tree is read-only and safe
// for concurrent Search calls.
type Tree struct {
	root     *Node
	base     float32
	distance DistanceFunction
	size     int
	sealed   bool
}

// NewTree constructs a cover tree with the provided base and distance metric.
func NewTree(base float32, distanceFn DistanceFunction) *Tree {
	if base <= 1 {
		base = 1.3
	}
	if !distanceFn.Valid() {
		distanceFn = DistanceFunctionCosine
	}
	return &Tree{base: base, distance: distanceFn}
}

// Distance returns the metric the tree was built for.
func (t *Tree) Distance() DistanceFunction { return t.distance }

// Len returns the number of inserted points.
func (t *Tree) Len() int { return t.size }

// Insert adds a point. Cosine points are projected onto the unit sphere;
// the caller keeps its own copy of the original vector.
func (t *Tree) Insert(point *Point) {
	if point.Magnitude == 0 && len(point.Vector) > 0 {
		point.Magnitude = vector.Magnitude(point.Vector)
	}
	if t.distance == DistanceFunctionCosine {
		point.Vector = unitVector(point.Vector, point.Magnitude)
	}
	t.size++
	t.sealed = false
	if t.root == nil {
		node := NewNode(point, 0)
		t.root = &node
		return
	}
	t.insert(t.root, point, 0)
}

func (t *Tree) insert(node *Node, point *Point, level int32) {
	for {
		baseLevel := float32(math.Pow(float64(t.base), float64(level)))
		distance := EuclideanDistance(point, node.point)
		if distance < baseLevel {
			inserted := false
			for i := range node.children {
				child := &node.children[i]
				if EuclideanDistance(point, child.point) < baseLevel {
					node = child
					level--
					inserted = true
					break
				}
			}
			if !inserted {
				node.children = append(node.children, NewNode(point, level-1))
				return
			}
		} else {
			level++
			if level > node.level {
				newRoot := NewNode(point, level)
				newRoot.children = append(newRoot.children, *t.root)
				t.root = &newRoot
				return
			}
		}
	}
}

// Seal computes subtree radii. It must be called after the last Insert and
// before the first Search.
func (t *Tree) Seal() {
	computeRadius(t.root)
	t.sealed = true
}

func computeRadius(n *Node) float32 {
	if n == nil {
		return 0
	}
	maxR := float32(0)
	for i := range n.children {
		child := &n.children[i]
		d := EuclideanDistance(n.point, child.point) + computeRadius(child)
		if d > maxR {
			maxR = d
		}
	}
	n.radius = maxR
	return maxR
}

// Search walks the tree best-first by subtree lower bound and calls visit for
// every point that may be within bound() of the query. bound is re-read after
// each visit so the caller can tighten it as its result set fills; it is
// expressed in the tree's own distance (chord length for cosine).
func (t *Tree) Search(query []float32, bound func() float64, visit func(p *Point)) {
	if t.root == nil {
		return
	}
	if !t.sealed {
		t.Seal()
	}
	q := &Point{ID: -1, Vector: query}
	if t.distance == DistanceFunctionCosine {
		q.Vector = unitVector(query, vector.Magnitude(query))
	}
	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, nodeItem{node: t.root, lb: EuclideanDistance(q, t.root.point) - t.root.radius})
	for pq.Len() > 0 {
		top := heap.Pop(pq).(nodeItem)
		if float64(top.lb) > widen(bound()) {
			break
		}
		visit(top.node.point)
		for i := range top.node.children {
			child := &top.node.children[i]
			lb := EuclideanDistance(q, child.point) - child.radius
			if float64(lb) > widen(bound()) {
				continue
			}
			heap.Push(pq, nodeItem{node: child, lb: lb})
		}
	}
}
