package vector

import (
	"math"

	"github.com/viant/vec/search"
)

// Magnitude returns the L2 norm of v. The float32 kernel from viant/vec is
// used unless its sum of squares overflows or underflows, in which case the
// norm is recomputed in float64. The result is +Inf only when the norm
// itself exceeds the float32 range.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	if m := search.Float32s(v).Magnitude(); m > 0 && !math.IsInf(float64(m), 0) {
		return m
	}
	return float32(math.Sqrt(Dot(v, v)))
}

// CosineDistance returns 1 - cosine similarity using precomputed magnitudes.
// A zero-magnitude operand is treated as orthogonal to everything.
// Callers guarantee equal lengths.
func CosineDistance(a []float32, am float32, b []float32, bm float32) float64 {
	if am == 0 || bm == 0 {
		return 1
	}
	return 1 - Dot(a, b)/(float64(am)*float64(bm))
}

// EuclideanDistance returns the L2 distance; callers guarantee equal lengths.
// Overflowing float32 sums fall back to float64 accumulation.
func EuclideanDistance(a, b []float32) float64 {
	if d := search.Float32s(a).EuclideanDistance(b); !math.IsInf(float64(d), 0) && !math.IsNaN(float64(d)) {
		return float64(d)
	}
	var s float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		s += diff * diff
	}
	return math.Sqrt(s)
}

// Dot returns the inner product of a and b accumulated in float64.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Normalize returns an L2-normalised copy of v. Zero vectors are copied as is.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i := range out {
		out[i] = float32(float64(out[i]) * inv)
	}
	return out
}

// Finite reports whether every component of v is a finite number and its
// magnitude fits in a float32.
func Finite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return !math.IsInf(float64(Magnitude(v)), 0)
}
