package tree

// nodeItem is a pending subtree in a best-first search.
type nodeItem struct {
	node *Node
	// lb is the lower bound on the distance from the query to any point
	// in the subtree.
	lb float32
}

// nodeQueue implements heap.Interface ordered by ascending lower bound.
type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].lb < q[j].lb }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
