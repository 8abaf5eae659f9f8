package cache

import (
	"context"

	"github.com/amrrdev/officetext/internal/types"
)

// Exister answers whether an object is present in the store.
type Exister interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Resolver derives the processed-text key for a document and checks for it.
type Resolver struct {
	store  Exister
	prefix string
}

func NewResolver(store Exister, prefix string) *Resolver {
	return &Resolver{store: store, prefix: prefix}
}

// Key is the cache key for ref, without touching the store.
func (r *Resolver) Key(ref types.DocumentRef) string {
	return ref.CacheKey(r.prefix)
}

// Resolve reports whether the processed artifact for ref already exists.
// Store errors are returned as-is and never retried.
func (r *Resolver) Resolve(ctx context.Context, ref types.DocumentRef) (bool, string, error) {
	key := r.Key(ref)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, key, err
	}
	return exists, key, nil
}
