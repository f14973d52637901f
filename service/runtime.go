package service

import (
	"fmt"

	"github.com/viant/vecserve/embed"
	"github.com/viant/vecserve/search"
	"github.com/viant/vecserve/store"
)

// Runtime is the process-wide context built once during loading and shared
// read-only by every request afterwards.
type Runtime struct {
	Store    *store.Store
	Engine   *search.Engine
	Embedder embed.Embedder
}

// NewRuntime pairs a loaded store with the embedder, checking that the
// embedder produces vectors of the index dimension.
func NewRuntime(st *store.Store, embedder embed.Embedder) (*Runtime, error) {
	if st.Len() > 0 && embedder.Dim() != st.Dim() {
		return nil, fmt.Errorf("%w: embedder %s produces %d dimensions, index has %d",
			store.ErrDimensionMismatch, embedder.Name(), embedder.Dim(), st.Dim())
	}
	dim := st.Dim()
	if dim == 0 {
		dim = embedder.Dim()
	}
	return &Runtime{
		Store:    st,
		Engine:   search.New(st.Index(), dim),
		Embedder: embedder,
	}, nil
}
