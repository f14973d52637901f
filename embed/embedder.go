package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmbeddingUnavailable is returned when the configured provider cannot be
// initialised.
var ErrEmbeddingUnavailable = errors.New("embed: embedding provider unavailable")

// Embedder converts text to a vector.
type Embedder interface {
	// Embed converts text to a vector of length Dim.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dim returns the vector dimensionality.
	Dim() int

	// Name identifies the embedder.
	Name() string
}

// Provider names.
const (
	NameHashing = "hashing"
	NameTFIDF   = "tfidf"
)

// DefaultDim is the hashing embedder dimension when none is configured.
const DefaultDim = 384

// Config selects and parameterises the embedding provider.
type Config struct {
	// Name is the provider, "hashing" (default) or "tfidf".
	Name string
	// Dim is the hashing dimension, or the maximum TF-IDF vocabulary when training.
	Dim int
	// ModelFile is the persisted TF-IDF model.
	ModelFile string
	// QueryPrefix is prepended to query text, never to documents.
	QueryPrefix string
	// Normalize L2-normalises every produced vector.
	Normalize bool
}

// New builds the configured provider.
func New(cfg Config) (*Provider, error) {
	var base Embedder
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", NameHashing:
		dim := cfg.Dim
		if dim == 0 {
			dim = DefaultDim
		}
		if dim < 0 {
			return nil, fmt.Errorf("%w: invalid dimension %d", ErrEmbeddingUnavailable, dim)
		}
		base = NewHashing(dim)
	case NameTFIDF:
		if cfg.ModelFile == "" {
			return nil, fmt.Errorf("%w: tfidf requires a model file", ErrEmbeddingUnavailable)
		}
		model, err := LoadTFIDF(cfg.ModelFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		base = model
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrEmbeddingUnavailable, cfg.Name)
	}
	return NewProvider(base, cfg.QueryPrefix, cfg.Normalize), nil
}
