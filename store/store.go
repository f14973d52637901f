package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/viant/vecserve/docstore"
	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
	"golang.org/x/sync/errgroup"
)

// File names inside an artifact directory.
const (
	IndexFile     = "index.vsx"
	DocumentsFile = "documents.db"
)

// Options declares what the caller expects the artifact to contain.
// Zero values skip the corresponding check.
type Options struct {
	Dim       int
	Metric    vector.Metric
	Normalize bool
}

// Store is a loaded artifact: a built index and the documents it points at.
type Store struct {
	header    index.Header
	idx       index.Index
	docs      []vector.Document
	dim       int
	createdAt time.Time
}

// Load reads and cross-checks the artifact in dir, then builds its index.
func Load(ctx context.Context, dir string, opts Options) (*Store, error) {
	indexPath := filepath.Join(dir, IndexFile)
	docsPath := filepath.Join(dir, DocumentsFile)
	for _, p := range []string{indexPath, docsPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, p)
			}
			return nil, err
		}
	}

	var (
		header  index.Header
		vectors [][]float32
		info    docstore.Info
		docs    []vector.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := os.ReadFile(indexPath)
		if err != nil {
			return err
		}
		if header, vectors, err = index.Decode(data); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if info, docs, err = docstore.Read(gctx, docsPath); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if header.ArtifactID != info.ArtifactID {
		return nil, fmt.Errorf("%w: index artifact %s does not match documents artifact %s", ErrCorruptIndex, header.ArtifactID, info.ArtifactID)
	}
	if header.Count != len(docs) {
		return nil, fmt.Errorf("%w: index holds %d vectors, document table %d", ErrCorruptIndex, header.Count, len(docs))
	}
	if opts.Dim > 0 && header.Count > 0 && header.Dim != opts.Dim {
		return nil, fmt.Errorf("%w: index dim %d, expected %d", ErrDimensionMismatch, header.Dim, opts.Dim)
	}
	if opts.Metric != "" && header.Metric != opts.Metric {
		return nil, fmt.Errorf("%w: index metric %s, expected %s", ErrMetricMismatch, header.Metric, opts.Metric)
	}
	if header.Normalized != opts.Normalize {
		return nil, fmt.Errorf("%w: index normalized=%v, embedder normalize=%v", ErrNormalizationMismatch, header.Normalized, opts.Normalize)
	}

	idx, err := NewIndex(header.Kind, header.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if err := idx.Build(vectors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	dim := header.Dim
	if header.Count == 0 {
		dim = opts.Dim
	}
	return &Store{header: header, idx: idx, docs: docs, dim: dim, createdAt: info.CreatedAt}, nil
}

// Index returns the built index.
func (s *Store) Index() index.Index { return s.idx }

// Dim returns the vector dimension of the artifact.
func (s *Store) Dim() int { return s.dim }

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.docs) }

// Metric returns the metric the index was built with.
func (s *Store) Metric() vector.Metric { return s.header.Metric }

// Normalized reports whether stored vectors were L2-normalised at build time.
func (s *Store) Normalized() bool { return s.header.Normalized }

// ArtifactID identifies the index/document pair.
func (s *Store) ArtifactID() uuid.UUID { return s.header.ArtifactID }

// CreatedAt returns the build time recorded in the document table.
func (s *Store) CreatedAt() time.Time { return s.createdAt }

// Lookup returns the document stored at id.
func (s *Store) Lookup(id int) (vector.Document, error) {
	if id < 0 || id >= len(s.docs) {
		return vector.Document{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.docs[id], nil
}
