package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/vecserve/vector"
)

// ErrDimensionMismatch is returned when a query or build vector does not
// match the index dimension.
var ErrDimensionMismatch = errors.New("index: vector dimension mismatch")

// Neighbor is a single kNN candidate: the document position and its ranking
// distance (lower is closer).
type Neighbor struct {
	ID       int
	Distance float64
}

// Index defines a read-only vector index. Build is called exactly once, before
// the index is shared; Query must be safe for concurrent callers afterwards.
type Index interface {
	// Build constructs the index from vectors; vector i gets ID i.
	// All vectors must have the same dimension.
	Build(vectors [][]float32) error

	// Query returns up to k neighbors ordered by (Distance, ID) ascending.
	// k <= 0 or k > Len() returns every vector.
	Query(query []float32, k int) ([]Neighbor, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the vector dimension, 0 for an empty index.
	Dim() int

	// Metric returns the distance function the index ranks by.
	Metric() vector.Metric

	// Kind identifies the implementation for persistence.
	Kind() Kind
}

// Kind enumerates index implementations.
type Kind uint8

const (
	// KindBrute is the exact brute-force scan.
	KindBrute Kind = 1
	// KindVPTree is the vantage-point tree.
	KindVPTree Kind = 2
	// KindCover is the cover tree.
	KindCover Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindBrute:
		return "brute"
	case KindVPTree:
		return "vptree"
	case KindCover:
		return "cover"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k names a known implementation.
func (k Kind) Valid() bool { return k >= KindBrute && k <= KindCover }

// ParseKind resolves an index kind name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "brute", "bruteforce", "flat":
		return KindBrute, nil
	case "vptree", "vp":
		return KindVPTree, nil
	case "cover":
		return KindCover, nil
	}
	return 0, fmt.Errorf("index: unsupported kind %q", name)
}

// Less orders neighbors by distance, then by ascending ID.
func Less(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// CheckVectors validates that vectors share one dimension and returns it.
func CheckVectors(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("index: empty vector at position 0: %w", ErrDimensionMismatch)
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return 0, fmt.Errorf("index: inconsistent vector dims %d vs %d at position %d: %w", len(vectors[j]), dim, j, ErrDimensionMismatch)
		}
	}
	return dim, nil
}
