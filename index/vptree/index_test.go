package vptree

import (
	"math/rand"
	"testing"

	"github.com/viant/vecserve/index/bruteforce"
	"github.com/viant/vecserve/vector"
)

func randomVectors(r *rand.Rand, n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dim)
		for j := range out[i] {
			out[i][j] = float32(r.NormFloat64())
		}
	}
	return out
}

func TestMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	vectors := randomVectors(r, 300, 8)
	// duplicates and a zero vector exercise ties and the cosine special case
	vectors = append(vectors, vectors[3], vectors[3], make([]float32, 8))
	queries := randomVectors(r, 25, 8)
	queries = append(queries, vectors[3], make([]float32, 8))

	for _, metric := range []vector.Metric{vector.Cosine, vector.L2} {
		tree := New(metric)
		if err := tree.Build(vectors); err != nil {
			t.Fatalf("%s: Build failed: %v", metric, err)
		}
		brute := bruteforce.New(metric)
		if err := brute.Build(vectors); err != nil {
			t.Fatalf("%s: brute Build failed: %v", metric, err)
		}
		for qi, q := range queries {
			for _, k := range []int{1, 5, 17, len(vectors)} {
				got, err := tree.Query(q, k)
				if err != nil {
					t.Fatalf("%s: Query failed: %v", metric, err)
				}
				want, _ := brute.Query(q, k)
				if len(got) != len(want) {
					t.Fatalf("%s q%d k=%d: got %d neighbors, want %d", metric, qi, k, len(got), len(want))
				}
				for i := range want {
					if got[i] != want[i] {
						t.Fatalf("%s q%d k=%d: neighbor[%d] = %+v, want %+v", metric, qi, k, i, got[i], want[i])
					}
				}
			}
		}
	}
}

func TestRejectsInnerProduct(t *testing.T) {
	if err := New(vector.InnerProduct).Build([][]float32{{1, 0}}); err == nil {
		t.Fatalf("expected inner_product to be rejected")
	}
}
