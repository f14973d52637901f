package bruteforce

import (
	"errors"
	"math"
	"testing"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
)

func TestIndexQueryCosine(t *testing.T) {
	idx := New(vector.Cosine)
	if err := idx.Build([][]float32{{1, 0}, {0, 1}, {1, 1}, {-1, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != 0 || got[1].ID != 2 {
		t.Fatalf("unexpected neighbors: %+v", got)
	}
	if got[0].Distance > 1e-6 {
		t.Fatalf("expected exact match distance ~0, got %v", got[0].Distance)
	}
}

func TestIndexQueryMetrics(t *testing.T) {
	vectors := [][]float32{{1, 0}, {10, 0}, {0, 2}}
	cases := []struct {
		metric vector.Metric
		query  []float32
		want   []int
	}{
		{metric: vector.L2, query: []float32{2, 0}, want: []int{0, 2, 1}},
		{metric: vector.InnerProduct, query: []float32{1, 0}, want: []int{1, 0, 2}},
		{metric: vector.Cosine, query: []float32{1, 0}, want: []int{0, 1, 2}},
	}
	for _, c := range cases {
		idx := New(c.metric)
		if err := idx.Build(vectors); err != nil {
			t.Fatalf("%s: Build failed: %v", c.metric, err)
		}
		got, err := idx.Query(c.query, 0)
		if err != nil {
			t.Fatalf("%s: Query failed: %v", c.metric, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %d neighbors, want %d", c.metric, len(got), len(c.want))
		}
		for i, id := range c.want {
			if got[i].ID != id {
				t.Fatalf("%s: neighbor[%d] = %d, want %d (%+v)", c.metric, i, got[i].ID, id, got)
			}
		}
	}
}

func TestIndexClampAndTies(t *testing.T) {
	idx := New(vector.L2)
	if err := idx.Build([][]float32{{1, 1}, {1, 1}, {1, 1}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query([]float32{0, 0}, 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected k clamped to 3, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != i {
			t.Fatalf("expected ties ordered by id, got %+v", got)
		}
	}
}

func TestIndexDimensionMismatch(t *testing.T) {
	idx := New(vector.Cosine)
	if err := idx.Build([][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := idx.Query([]float32{1, 0}, 1); !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if err := New(vector.Cosine).Build([][]float32{{1, 0}, {1}}); !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("expected ragged build to fail, got %v", err)
	}
}

func TestIndexEmpty(t *testing.T) {
	idx := New(vector.Cosine)
	if err := idx.Build(nil); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query([]float32{1}, 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("Query on empty index = %v, %v", got, err)
	}
}

func TestIndexLargeMagnitudes(t *testing.T) {
	idx := New(vector.L2)
	if err := idx.Build([][]float32{{0, 1e20}, {1e20, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query([]float32{1e20, 1e19}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || math.IsInf(got[0].Distance, 0) || math.IsInf(got[1].Distance, 0) {
		t.Fatalf("unexpected neighbors: %+v", got)
	}
}
