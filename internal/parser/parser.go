package parser

import (
	"context"

	"github.com/amrrdev/officetext/internal/types"
)

// Extractor turns a local file into fragments in source order.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]types.Fragment, error)
	Capability() types.Capability
}

// Warmer is implemented by extractors holding a process-wide resource
// that should be acquired before the first request.
type Warmer interface {
	Warm(ctx context.Context) error
	Ready() bool
}
