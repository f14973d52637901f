package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/viant/vecserve/docstore"
	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
)

// Artifact is the input of Write: documents paired by position with their
// embeddings.
type Artifact struct {
	Kind      index.Kind
	Metric    vector.Metric
	Normalize bool
	Documents []vector.Document
	Vectors   [][]float32
}

// Write builds the artifact pair in dir and returns its fresh id. Each file is
// staged under a temporary name and renamed into place. The index is
// built once to validate that the kind supports the metric.
func Write(ctx context.Context, dir string, a Artifact) (uuid.UUID, error) {
	if len(a.Documents) != len(a.Vectors) {
		return uuid.Nil, fmt.Errorf("store: %d documents but %d vectors", len(a.Documents), len(a.Vectors))
	}
	vectors := a.Vectors
	if a.Normalize {
		vectors = make([][]float32, len(a.Vectors))
		for i, v := range a.Vectors {
			vectors[i] = vector.Normalize(v)
		}
	}
	for i, v := range vectors {
		if !vector.Finite(v) {
			return uuid.Nil, fmt.Errorf("store: vector %d has non-finite components", i)
		}
	}
	idx, err := NewIndex(a.Kind, a.Metric)
	if err != nil {
		return uuid.Nil, err
	}
	if err := idx.Build(vectors); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	data, err := index.Encode(index.Header{
		Kind:       a.Kind,
		Metric:     a.Metric,
		Normalized: a.Normalize,
		ArtifactID: id,
	}, vectors)
	if err != nil {
		return uuid.Nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return uuid.Nil, err
	}
	// a pair split by a crash between the renames fails the artifact id check
	docsTmp := filepath.Join(dir, DocumentsFile+".tmp")
	indexTmp := filepath.Join(dir, IndexFile+".tmp")
	defer func() {
		_ = os.Remove(docsTmp)
		_ = os.Remove(indexTmp)
	}()
	if err := docstore.Write(ctx, docsTmp, id, a.Documents); err != nil {
		return uuid.Nil, err
	}
	if err := os.WriteFile(indexTmp, data, 0o644); err != nil {
		return uuid.Nil, err
	}
	if err := os.Rename(docsTmp, filepath.Join(dir, DocumentsFile)); err != nil {
		return uuid.Nil, err
	}
	if err := os.Rename(indexTmp, filepath.Join(dir, IndexFile)); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
