// Package builder produces an index artifact from a JSON Lines corpus. It is
// the offline counterpart of the serving path and shares its embedder
// configuration so queries and documents land in the same vector space.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/store"
	"github.com/viant/vecserve/vector"
)

// Record is one input line.
type Record struct {
	Text     *string           `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result summarises a build.
type Result struct {
	ArtifactID uuid.UUID
	Documents  int
	Dim        int
	ModelFile  string // set when a TF-IDF model was trained
}

// ReadDocuments parses a JSON Lines corpus. Every record needs a text field.
func ReadDocuments(r io.Reader) ([]vector.Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var docs []vector.Document
	for n := 1; ; n++ {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("builder: record %d: %w", n, err)
		}
		if rec.Text == nil {
			return nil, fmt.Errorf("builder: record %d: missing text", n)
		}
		docs = append(docs, vector.Document{ID: len(docs), Text: *rec.Text, Metadata: rec.Metadata})
	}
}

// Build embeds docs with the configured provider and writes the artifact
// into outDir. A TF-IDF embedder is trained on docs first and saved next to
// the artifact.
func Build(ctx context.Context, cfg *config.Config, docs []vector.Document, outDir string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("builder: %w", err)
	}
	provider, modelFile, err := newProvider(cfg, docs, outDir)
	if err != nil {
		return res, err
	}
	res.ModelFile = modelFile

	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		if vectors[i], err = provider.EmbedDocument(ctx, d.Text); err != nil {
			return res, fmt.Errorf("builder: embed document %d: %w", i, err)
		}
	}
	id, err := store.Write(ctx, outDir, store.Artifact{
		Kind:      cfg.Kind(),
		Metric:    cfg.Metric(),
		Normalize: provider.Normalize(),
		Documents: docs,
		Vectors:   vectors,
	})
	if err != nil {
		return res, err
	}
	res.ArtifactID = id
	res.Documents = len(docs)
	res.Dim = provider.Dim()
	logger.Info("artifact written",
		"dir", outDir,
		"artifact", id,
		"documents", res.Documents,
		"dim", res.Dim,
		"embedder", provider.Name(),
		"index", cfg.Kind(),
		"metric", cfg.Metric())
	return res, nil
}

func newProvider(cfg *config.Config, docs []vector.Document, outDir string) (*embed.Provider, string, error) {
	ec := cfg.EmbedConfig("")
	if !strings.EqualFold(ec.Name, embed.NameTFIDF) {
		provider, err := embed.New(ec)
		return provider, "", err
	}
	if filepath.IsAbs(ec.ModelFile) {
		return nil, "", fmt.Errorf("builder: tfidf model file %q must be relative to the artifact directory", ec.ModelFile)
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	model := embed.NewTFIDF(cfg.Embedder.Dim)
	if err := model.Train(texts); err != nil {
		return nil, "", err
	}
	path := filepath.Join(outDir, ec.ModelFile)
	if err := model.Save(path); err != nil {
		return nil, "", err
	}
	return embed.NewProvider(model, ec.QueryPrefix, ec.Normalize), path, nil
}
