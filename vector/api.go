package vector

import (
	"fmt"
	"math"
	"strings"
)

// Document represents a single indexed document. Its ID equals the position
// of its vector in the index, so document i is paired with vector i.
type Document struct {
	// ID is the 0-based insertion position assigned at build time.
	ID int

	// Text holds the original document text, returned verbatim on a match.
	Text string

	// Metadata carries optional string attributes copied from the build input.
	Metadata map[string]string
}

// Metric names the distance function an index was built with.
type Metric string

const (
	// Cosine ranks by cosine similarity; the internal distance is 1 - cos.
	Cosine Metric = "cosine"
	// InnerProduct ranks by dot product; the internal distance is -dot.
	InnerProduct Metric = "inner_product"
	// L2 ranks by Euclidean distance.
	L2 Metric = "l2"
)

// ParseMetric resolves a metric name, accepting the common aliases.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cos", "cosine":
		return Cosine, nil
	case "ip", "dot", "inner_product", "innerproduct":
		return InnerProduct, nil
	case "l2", "euclidean":
		return L2, nil
	}
	return "", fmt.Errorf("vector: unsupported metric %q", name)
}

// Code returns the on-disk identifier of the metric, 0 when unknown.
func (m Metric) Code() uint8 {
	switch m {
	case Cosine:
		return 1
	case InnerProduct:
		return 2
	case L2:
		return 3
	}
	return 0
}

// MetricFromCode is the inverse of Code.
func MetricFromCode(code uint8) (Metric, bool) {
	switch code {
	case 1:
		return Cosine, true
	case 2:
		return InnerProduct, true
	case 3:
		return L2, true
	}
	return "", false
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool { return m.Code() != 0 }

// Distance computes the ranking distance between a and b; lower is closer.
// am and bm are the precomputed magnitudes (only used by Cosine).
func (m Metric) Distance(a []float32, am float32, b []float32, bm float32) float64 {
	var d float64
	switch m {
	case Cosine:
		d = CosineDistance(a, am, b, bm)
	case InnerProduct:
		d = -Dot(a, b)
	case L2:
		d = EuclideanDistance(a, b)
	default:
		return math.Inf(1)
	}
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// Score converts a ranking distance into the externally reported score:
// similarity for Cosine and InnerProduct, distance for L2.
func (m Metric) Score(distance float64) float64 {
	switch m {
	case Cosine:
		return 1 - distance
	case InnerProduct:
		return -distance
	}
	return distance
}
