package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/amrrdev/officetext/internal/types"
)

type fakeStore struct {
	objects map[string]bool
	err     error
	calls   []string
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.calls = append(f.calls, key)
	if f.err != nil {
		return false, f.err
	}
	return f.objects[key], nil
}

func TestResolveHitAndMiss(t *testing.T) {
	store := &fakeStore{objects: map[string]bool{"processed/report.txt": true}}
	r := NewResolver(store, "processed")

	exists, key, err := r.Resolve(context.Background(), "uploads/report.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !exists || key != "processed/report.txt" {
		t.Fatalf("got exists=%v key=%q", exists, key)
	}

	exists, key, err = r.Resolve(context.Background(), "uploads/other.docx")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if exists || key != "processed/other.txt" {
		t.Fatalf("got exists=%v key=%q", exists, key)
	}

	if len(store.calls) != 2 {
		t.Fatalf("expected one store call per resolve, got %d", len(store.calls))
	}
}

func TestResolveStemCollision(t *testing.T) {
	store := &fakeStore{objects: map[string]bool{"processed/report.txt": true}}
	r := NewResolver(store, "processed")

	for _, ref := range []types.DocumentRef{"uploads/a/report.pdf", "shared/report.pdf"} {
		exists, key, err := r.Resolve(context.Background(), ref)
		if err != nil || !exists || key != "processed/report.txt" {
			t.Errorf("Resolve(%q) = %v, %q, %v", ref, exists, key, err)
		}
	}
}

func TestResolvePropagatesStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&fakeStore{err: boom}, "processed")

	exists, key, err := r.Resolve(context.Background(), "uploads/report.pdf")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if exists {
		t.Fatal("expected exists=false on error")
	}
	if key != "processed/report.txt" {
		t.Fatalf("key = %q", key)
	}
}
