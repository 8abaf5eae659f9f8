package parser

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amrrdev/officetext/internal/types"
)

type Options struct {
	// TikaURL enables .doc/.ppt/.xls extraction. Empty disables it.
	TikaURL    string
	HTTPClient *http.Client
}

type Registry struct {
	extractors map[types.Capability]Extractor
	warmers    []Warmer
}

func NewRegistry(opts Options) *Registry {
	registry := &Registry{
		extractors: make(map[types.Capability]Extractor),
	}

	html := NewHTMLParser()
	tika := NewTikaParser(opts.TikaURL, opts.HTTPClient, html)

	registry.Register(NewTextParser())
	registry.Register(NewCSVParser())
	registry.Register(html)
	registry.Register(NewDOCXParser(tika))
	registry.Register(NewPPTXParser(tika))
	registry.Register(NewXLSXParser(tika))

	if tika != nil {
		registry.warmers = append(registry.warmers, tika)
	}

	return registry
}

// Register installs e for its capability, replacing any previous extractor.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Capability()] = e
	if w, ok := e.(Warmer); ok {
		r.warmers = append(r.warmers, w)
	}
}

func (r *Registry) Get(capability types.Capability) (Extractor, error) {
	if e, ok := r.extractors[capability]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor registered for %s", capability)
}

// Warm acquires every lazily initialised resource. It is safe to call
// repeatedly; resources that are already up are skipped.
func (r *Registry) Warm(ctx context.Context) error {
	for _, w := range r.warmers {
		if err := w.Warm(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Ready reports whether every resource has been acquired.
func (r *Registry) Ready() bool {
	for _, w := range r.warmers {
		if !w.Ready() {
			return false
		}
	}
	return true
}
