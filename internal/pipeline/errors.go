package pipeline

import (
	"errors"
	"fmt"

	"github.com/amrrdev/officetext/internal/router"
)

var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrUnsupportedFormat = router.ErrUnsupportedFormat
	ErrExtractionFailure = errors.New("extraction failure")
	ErrMalformedInput    = errors.New("malformed input")
)

// State names the step of an invocation.
type State string

const (
	StateValidate   State = "validate"
	StateCheckCache State = "check-cache"
	StateDownload   State = "download"
	StateRoute      State = "route"
	StateExtract    State = "extract"
	StatePersist    State = "persist"
)

// Error is a failed invocation. It matches both its Kind sentinel and the
// underlying cause with errors.Is.
type Error struct {
	FileName string
	State    State
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %s: %v", e.Kind, e.FileName, e.State, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Kind returns the sentinel for err, or nil when err is not classified.
func Kind(err error) error {
	for _, kind := range []error{ErrMalformedInput, ErrUnsupportedFormat, ErrExtractionFailure, ErrStoreUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
