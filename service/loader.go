package service

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/viant/vecserve/artifact"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/store"
)

// NewLoader returns the production loader: resolve the artifact location,
// build the embedder, load the store and pair them.
func NewLoader(cfg *config.Config, resolver *artifact.Resolver, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) (*Runtime, error) {
		var extra []string
		if model := cfg.EmbedConfig("").ModelFile; model != "" && !filepath.IsAbs(model) {
			extra = append(extra, filepath.ToSlash(model))
		}
		dir, err := resolver.Resolve(ctx, cfg.Artifact.Path, extra...)
		if err != nil {
			return nil, &StartupError{Op: "resolve", Err: err}
		}
		logger.Info("artifact resolved", "location", cfg.Artifact.Path, "dir", dir)

		provider, err := embed.New(cfg.EmbedConfig(dir))
		if err != nil {
			return nil, &StartupError{Op: "embedder", Err: err}
		}
		st, err := store.Load(ctx, dir, store.Options{
			Dim:       provider.Dim(),
			Metric:    cfg.Metric(),
			Normalize: provider.Normalize(),
		})
		if err != nil {
			return nil, &StartupError{Op: "load", Err: err}
		}
		rt, err := NewRuntime(st, provider)
		if err != nil {
			return nil, &StartupError{Op: "runtime", Err: err}
		}
		return rt, nil
	}
}
