package builder

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecserve/artifact"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/service"
	"github.com/viant/vecserve/store"
)

const corpus = `{"text":"cats are mammals","metadata":{"kind":"animal"}}
{"text":"dogs are mammals","metadata":{"kind":"animal"}}

{"text":"cars have wheels"}
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestReadDocuments(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(corpus))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, 2, docs[2].ID)
	assert.Equal(t, "cars have wheels", docs[2].Text)
	assert.Equal(t, "animal", docs[0].Metadata["kind"])

	_, err = ReadDocuments(strings.NewReader(`{"metadata":{}}`))
	assert.ErrorContains(t, err, "missing text")
	_, err = ReadDocuments(strings.NewReader(`{"text":"a","extra":1}`))
	assert.Error(t, err)
	_, err = ReadDocuments(strings.NewReader(`{"text":`))
	assert.Error(t, err)

	docs, err = ReadDocuments(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func query(t *testing.T, cfg *config.Config, raw string) []string {
	t.Helper()
	svc := service.New(service.NewLoader(cfg, artifact.NewResolver(nil, ""), quiet), quiet)
	require.NoError(t, svc.Start(context.Background()))
	resp := svc.Handle(context.Background(), []byte(raw))
	require.Equal(t, 200, resp.Status, string(resp.Body))
	var matches []struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &matches))
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out
}

func TestBuildServeRoundTrip(t *testing.T) {
	testCases := []struct {
		description string
		embedder    string
		kind        string
		normalize   bool
	}{
		{description: "hashing brute", embedder: embed.NameHashing, kind: "brute"},
		{description: "hashing vptree normalized", embedder: embed.NameHashing, kind: "vptree", normalize: true},
		{description: "tfidf cover", embedder: embed.NameTFIDF, kind: "cover"},
	}
	for _, tc := range testCases {
		docs, err := ReadDocuments(strings.NewReader(corpus))
		require.NoError(t, err, tc.description)

		cfg := config.Default()
		cfg.Embedder.Name = tc.embedder
		cfg.Embedder.Normalize = tc.normalize
		cfg.Index.Kind = tc.kind
		cfg.Artifact.Path = t.TempDir()

		res, err := Build(context.Background(), cfg, docs, cfg.Artifact.Path, quiet)
		require.NoError(t, err, tc.description)
		assert.Equal(t, 3, res.Documents, tc.description)
		if tc.embedder == embed.NameTFIDF {
			assert.Equal(t, filepath.Join(cfg.Artifact.Path, embed.DefaultModelFile), res.ModelFile, tc.description)
		} else {
			assert.Equal(t, embed.DefaultDim, res.Dim, tc.description)
		}

		st, err := store.Load(context.Background(), cfg.Artifact.Path, store.Options{Normalize: tc.normalize})
		require.NoError(t, err, tc.description)
		assert.Equal(t, res.ArtifactID, st.ArtifactID(), tc.description)

		got := query(t, cfg, `{"text":"what animal is a mammal","k":2}`)
		assert.Equal(t, []string{"cats are mammals", "dogs are mammals"}, got, tc.description)
	}
}

func TestBuildRejectsInnerProductTree(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(corpus))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Index.Kind = "vptree"
	cfg.Index.Metric = "inner_product"
	_, err = Build(context.Background(), cfg, docs, t.TempDir(), quiet)
	assert.Error(t, err)
}
