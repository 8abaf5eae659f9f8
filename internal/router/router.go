package router

import (
	"errors"
	"fmt"
	"sort"

	"github.com/amrrdev/officetext/internal/types"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Router maps file extensions to extraction capabilities. The sets are
// configuration; matching is exact and case-sensitive.
type Router struct {
	routes map[string]types.Capability
}

func New(extensions map[types.Capability][]string) (*Router, error) {
	r := &Router{routes: make(map[string]types.Capability)}

	for _, capability := range types.Capabilities() {
		for _, ext := range extensions[capability] {
			if prev, ok := r.routes[ext]; ok && prev != capability {
				return nil, fmt.Errorf("extension %q maps to both %s and %s", ext, prev, capability)
			}
			r.routes[ext] = capability
		}
	}

	return r, nil
}

func (r *Router) Route(ext string) (types.Capability, error) {
	if capability, ok := r.routes[ext]; ok {
		return capability, nil
	}
	return types.CapabilityUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Extensions lists every routed extension, sorted.
func (r *Router) Extensions() []string {
	exts := make([]string, 0, len(r.routes))
	for ext := range r.routes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
