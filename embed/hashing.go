package embed

import (
	"context"
	"hash/fnv"
)

// Hashing is a bag-of-words feature-hashing embedder: every token adds 1 to
// the bucket selected by its FNV-1a hash. It needs no model file.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing embedder with dim buckets.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Hashing{dim: dim}
}

// Name returns "hashing".
func (h *Hashing) Name() string { return NameHashing }

// Dim returns the number of buckets.
func (h *Hashing) Dim() int { return h.dim }

// Embed hashes the tokens of text. Text without tokens yields a zero vector.
func (h *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, h.dim)
	for _, w := range Tokenize(text) {
		hash := fnv.New32a()
		_, _ = hash.Write([]byte(w))
		vec[hash.Sum32()%uint32(h.dim)] += 1.0
	}
	return vec, nil
}
