package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vecserve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SM_MODEL_DIR", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, DefaultArtifactPath, cfg.Artifact.Path)
	assert.Equal(t, vector.Cosine, cfg.Metric())
	assert.Equal(t, index.KindBrute, cfg.Kind())
	assert.Equal(t, embed.DefaultDim, cfg.Embedder.Dim)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("S3_SECRET", "hunter2")
	path := writeConfig(t, `
listen: ":9000"
artifact:
  path: s3://models/v1
  s3:
    endpoint: http://localhost:9000
    access_key: minio
    secret_key: ${S3_SECRET}
embedder:
  name: tfidf
  query_prefix: "query: "
  normalize: true
index:
  metric: l2
  kind: cover
http:
  max_body_bytes: 2048
  read_timeout: 5s
log:
  level: debug
  format: json
serve_on_failure: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "s3://models/v1", cfg.Artifact.Path)
	assert.Equal(t, "hunter2", cfg.Artifact.S3.SecretKey)
	assert.Equal(t, vector.L2, cfg.Metric())
	assert.Equal(t, index.KindCover, cfg.Kind())
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.True(t, cfg.ServeOnFailure)

	ec := cfg.EmbedConfig("/opt/ml/model")
	assert.Equal(t, filepath.Join("/opt/ml/model", embed.DefaultModelFile), ec.ModelFile)
	assert.Equal(t, "query: ", ec.QueryPrefix)
	assert.True(t, ec.Normalize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SM_MODEL_DIR", "/sm/model")
	t.Setenv("VECSERVE_LISTEN", ":7000")
	t.Setenv("VECSERVE_METRIC", "inner_product")
	t.Setenv("VECSERVE_DIM", "64")
	t.Setenv("VECSERVE_NORMALIZE", "true")
	t.Setenv("VECSERVE_LOG_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/sm/model", cfg.Artifact.Path)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, vector.InnerProduct, cfg.Metric())
	assert.Equal(t, 64, cfg.Embedder.Dim)
	assert.True(t, cfg.Embedder.Normalize)
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("VECSERVE_ARTIFACT_PATH", "/data/artifact")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/artifact", cfg.Artifact.Path)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"metric":   "index:\n  metric: hamming\n",
		"kind":     "index:\n  kind: hnsw\n",
		"embedder": "embedder:\n  name: openai\n",
		"dim":      "embedder:\n  dim: -1\n",
		"format":   "log:\n  format: xml\n",
		"yaml":     "listen: [",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}

	t.Setenv("VECSERVE_DIM", "many")
	_, err := Load("")
	assert.Error(t, err)
}
