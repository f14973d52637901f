package store

import "errors"

var (
	// ErrMissingArtifact is returned when the index or the document table is absent.
	ErrMissingArtifact = errors.New("store: missing artifact")
	// ErrCorruptIndex is returned when either file is unreadable or the pair is inconsistent.
	ErrCorruptIndex = errors.New("store: corrupt index")
	// ErrDimensionMismatch is returned when the stored dimension differs from the configured one.
	ErrDimensionMismatch = errors.New("store: dimension mismatch")
	// ErrMetricMismatch is returned when the stored metric differs from the configured one.
	ErrMetricMismatch = errors.New("store: metric mismatch")
	// ErrNormalizationMismatch is returned when the stored vectors were normalised differently
	// from what the embedder produces.
	ErrNormalizationMismatch = errors.New("store: normalization mismatch")
	// ErrNotFound is returned by Lookup for an id outside 0..N-1.
	ErrNotFound = errors.New("store: document not found")
)
