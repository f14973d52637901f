package embed

import (
	"context"

	"github.com/viant/vecserve/vector"
)

// Provider wraps an Embedder with the query instruction prefix and optional
// L2 normalisation. It is the Embedder the service uses.
type Provider struct {
	base      Embedder
	prefix    string
	normalize bool
}

// NewProvider wraps base.
func NewProvider(base Embedder, prefix string, normalize bool) *Provider {
	return &Provider{base: base, prefix: prefix, normalize: normalize}
}

// Embed embeds a query: the prefix is prepended before embedding.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, p.prefix+text)
}

// EmbedDocument embeds document text without the query prefix.
func (p *Provider) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, text)
}

func (p *Provider) embed(ctx context.Context, text string) ([]float32, error) {
	v, err := p.base.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if p.normalize {
		v = vector.Normalize(v)
	}
	return v, nil
}

// Dim returns the base embedder dimension.
func (p *Provider) Dim() int { return p.base.Dim() }

// Name returns the base embedder name.
func (p *Provider) Name() string { return p.base.Name() }

// Normalize reports whether produced vectors are L2-normalised.
func (p *Provider) Normalize() bool { return p.normalize }

// Base returns the wrapped embedder.
func (p *Provider) Base() Embedder { return p.base }

var _ Embedder = (*Provider)(nil)
