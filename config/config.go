// Package config loads the service configuration from YAML and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/viant/vecserve/artifact"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/vector"
	"gopkg.in/yaml.v3"
)

// DefaultArtifactPath is where SageMaker mounts the model directory.
const DefaultArtifactPath = "/opt/ml/model"

// Config represents the service configuration.
type Config struct {
	Listen         string         `yaml:"listen"`
	Artifact       ArtifactConfig `yaml:"artifact"`
	Embedder       EmbedderConfig `yaml:"embedder"`
	Index          IndexConfig    `yaml:"index"`
	HTTP           HTTPConfig     `yaml:"http"`
	Log            LogConfig      `yaml:"log"`
	ServeOnFailure bool           `yaml:"serve_on_failure"` // keep answering probes after a failed start
}

// ArtifactConfig locates the index artifact.
type ArtifactConfig struct {
	Path     string            `yaml:"path"` // local directory or s3://bucket/prefix
	CacheDir string            `yaml:"cache_dir,omitempty"`
	S3       artifact.S3Config `yaml:"s3,omitempty"`
}

// EmbedderConfig selects the query embedder.
type EmbedderConfig struct {
	Name        string `yaml:"name"`
	Dim         int    `yaml:"dim"`
	ModelFile   string `yaml:"model_file,omitempty"` // relative paths resolve against the artifact directory
	QueryPrefix string `yaml:"query_prefix,omitempty"`
	Normalize   bool   `yaml:"normalize"`
}

// IndexConfig describes the expected index.
type IndexConfig struct {
	Metric string `yaml:"metric"`
	Kind   string `yaml:"kind,omitempty"` // used by the build command
}

// HTTPConfig contains transport settings.
type HTTPConfig struct {
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Embedder: EmbedderConfig{
			Name: embed.NameHashing,
			Dim:  embed.DefaultDim,
		},
		Index: IndexConfig{
			Metric: string(vector.Cosine),
			Kind:   index.KindBrute.String(),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (optional) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides values from VECSERVE_* variables. SM_MODEL_DIR is
// used when no artifact path is configured.
func (c *Config) applyEnv() error {
	if c.Artifact.Path == "" {
		c.Artifact.Path = os.Getenv("SM_MODEL_DIR")
	}
	if c.Artifact.Path == "" {
		c.Artifact.Path = DefaultArtifactPath
	}
	str := map[string]*string{
		"VECSERVE_ARTIFACT_PATH": &c.Artifact.Path,
		"VECSERVE_LISTEN":        &c.Listen,
		"VECSERVE_METRIC":        &c.Index.Metric,
		"VECSERVE_EMBEDDER":      &c.Embedder.Name,
		"VECSERVE_LOG_LEVEL":     &c.Log.Level,
	}
	for name, dest := range str {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dest = v
		}
	}
	if v := os.Getenv("VECSERVE_DIM"); v != "" {
		dim, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VECSERVE_DIM: %w", err)
		}
		c.Embedder.Dim = dim
	}
	if v := os.Getenv("VECSERVE_NORMALIZE"); v != "" {
		normalize, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VECSERVE_NORMALIZE: %w", err)
		}
		c.Embedder.Normalize = normalize
	}
	return nil
}

// expandEnvVars expands ${VAR} references in credential fields.
func (c *Config) expandEnvVars() {
	c.Artifact.S3.AccessKey = os.ExpandEnv(c.Artifact.S3.AccessKey)
	c.Artifact.S3.SecretKey = os.ExpandEnv(c.Artifact.S3.SecretKey)
	c.Artifact.S3.Endpoint = os.ExpandEnv(c.Artifact.S3.Endpoint)
}

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must be set")
	}
	if _, err := vector.ParseMetric(c.Index.Metric); err != nil {
		return err
	}
	if _, err := index.ParseKind(c.Index.Kind); err != nil {
		return err
	}
	switch strings.ToLower(c.Embedder.Name) {
	case embed.NameHashing:
		if c.Embedder.Dim <= 0 {
			return fmt.Errorf("embedder dim must be greater than 0")
		}
	case embed.NameTFIDF:
	default:
		return fmt.Errorf("unsupported embedder %q", c.Embedder.Name)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be greater than 0")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// Metric returns the parsed index metric.
func (c *Config) Metric() vector.Metric {
	m, _ := vector.ParseMetric(c.Index.Metric)
	return m
}

// Kind returns the parsed index kind.
func (c *Config) Kind() index.Kind {
	k, _ := index.ParseKind(c.Index.Kind)
	return k
}

// EmbedConfig returns the embedder settings, resolving the model file
// against the artifact directory dir.
func (c *Config) EmbedConfig(dir string) embed.Config {
	modelFile := c.Embedder.ModelFile
	if strings.EqualFold(c.Embedder.Name, embed.NameTFIDF) && modelFile == "" {
		modelFile = embed.DefaultModelFile
	}
	if modelFile != "" && !filepath.IsAbs(modelFile) && dir != "" {
		modelFile = filepath.Join(dir, modelFile)
	}
	return embed.Config{
		Name:        c.Embedder.Name,
		Dim:         c.Embedder.Dim,
		ModelFile:   modelFile,
		QueryPrefix: c.Embedder.QueryPrefix,
		Normalize:   c.Embedder.Normalize,
	}
}
