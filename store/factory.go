package store

import (
	"fmt"

	"github.com/viant/vecserve/index"
	"github.com/viant/vecserve/index/bruteforce"
	"github.com/viant/vecserve/index/cover"
	"github.com/viant/vecserve/index/vptree"
	"github.com/viant/vecserve/vector"
)

// NewIndex returns an empty index of the given kind ranking by metric.
func NewIndex(kind index.Kind, metric vector.Metric) (index.Index, error) {
	switch kind {
	case index.KindBrute:
		return bruteforce.New(metric), nil
	case index.KindVPTree:
		return vptree.New(metric), nil
	case index.KindCover:
		return cover.New(metric), nil
	}
	return nil, fmt.Errorf("store: unsupported index kind %v", kind)
}
