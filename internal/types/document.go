package types

import (
	"fmt"
	"path"
	"strings"
)

// DocumentRef is the logical name of a source object, e.g. "uploads/report.pdf".
type DocumentRef string

// BaseName is the last path segment of the reference.
func (d DocumentRef) BaseName() string {
	name := string(d)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Extension returns the final extension including its leading dot, or "" when there is none.
func (d DocumentRef) Extension() string {
	return path.Ext(d.BaseName())
}

// Stem is the base name without its final extension.
func (d DocumentRef) Stem() string {
	base := d.BaseName()
	return strings.TrimSuffix(base, path.Ext(base))
}

// Validate reports whether the reference can be processed at all.
func (d DocumentRef) Validate() error {
	if strings.TrimSpace(string(d)) == "" {
		return fmt.Errorf("file_name is required")
	}
	if d.Extension() == "" || d.Stem() == "" {
		return fmt.Errorf("file_name %q has no extension", string(d))
	}
	return nil
}

// CacheKey is where the processed text of this reference lives. References
// sharing a stem share a key regardless of their directory.
func (d DocumentRef) CacheKey(prefix string) string {
	return fmt.Sprintf("%s/%s.txt", strings.TrimSuffix(prefix, "/"), d.Stem())
}

// Result is returned for every successful invocation, cache hit or not.
type Result struct {
	FileKey          string `json:"file_key"`
	OriginalFileName string `json:"original_file_name"`
	Cached           bool   `json:"-"`
}
