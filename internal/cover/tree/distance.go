package tree

import (
	"math"

	"github.com/viant/vecserve/vector"
)

// DistanceFunction enumerates supported distance metrics for the cover tree.
type DistanceFunction string

const (
	DistanceFunctionCosine    DistanceFunction = "cosine"
	DistanceFunctionEuclidean DistanceFunction = "euclidean"
)

// Valid reports whether the tree can index under d.
func (d DistanceFunction) Valid() bool {
	return d == DistanceFunctionCosine || d == DistanceFunctionEuclidean
}

// EuclideanDistance returns the Euclidean distance between two points.
func EuclideanDistance(p1, p2 *Point) float32 {
	return float32(vector.EuclideanDistance(p1.Vector, p2.Vector))
}

// unitVector scales v to unit length. Cosine points are stored on the unit
// sphere, where chord length orders pairs exactly as cosine distance does and
// satisfies the triangle inequality the pruning bounds rely on.
func unitVector(v []float32, magnitude float32) []float32 {
	out := make([]float32, len(v))
	if magnitude == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / magnitude
	}
	return out
}

// cosineGuard absorbs float32 rounding in cosine distances near zero, where
// the square root below magnifies it.
const cosineGuard = 1e-5

// CosineBound maps a cosine distance (1 - cos) onto an upper bound of the
// chord length between the corresponding unit vectors.
func CosineBound(d float64) float64 {
	if d >= 2 {
		return 2
	}
	if d < 0 {
		d = 0
	}
	return math.Sqrt(2 * (d + cosineGuard))
}
