package tree

// Point represents a vector in the cover tree.
type Point struct {
	// ID is the caller's identifier, typically the vector position.
	ID        int
	Magnitude float32
	Vector    []float32
}

// NewPoint constructs a point for the given id and vector.
func NewPoint(id int, vector ...float32) *Point {
	return &Point{ID: id, Vector: vector}
}
