package parser

import (
	"context"
	"sync"
)

// lazyResource initialises something once per process. A failed attempt is
// not remembered, so the next caller tries again.
type lazyResource struct {
	mu    sync.Mutex
	ready bool
	init  func(ctx context.Context) error
}

func newLazyResource(init func(ctx context.Context) error) *lazyResource {
	return &lazyResource{init: init}
}

func (r *lazyResource) Acquire(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}
	if err := r.init(ctx); err != nil {
		return err
	}
	r.ready = true
	return nil
}

func (r *lazyResource) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}
