package assets

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// ErrInvalidResource means the backend decoded the resource but it is
	// structurally empty, e.g. a sheet without frames.
	ErrInvalidResource = errors.ConstError("invalid resource")

	// ErrBackendFetchFailed means the backend could not fetch or decode
	// the resource.
	ErrBackendFetchFailed = errors.ConstError("backend fetch failed")

	// errEvictedWhileLoading is the cause when an unload removed the
	// resource from the backend before its load settled.
	errEvictedWhileLoading = errors.ConstError("evicted before the load settled")
)

// LoadError is returned to every caller waiting on a failed load.
type LoadError struct {
	// Kind is ErrInvalidResource or ErrBackendFetchFailed.
	Kind error
	// Key is the alias or bundle name that failed.
	Key string
	Err error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: %q: %v", e.Kind, e.Key, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fetchFailed(key string, err error) error {
	if le, ok := err.(*LoadError); ok {
		return le
	}
	return &LoadError{Kind: ErrBackendFetchFailed, Key: key, Err: err}
}

func invalidResource(key, reason string) error {
	return &LoadError{Kind: ErrInvalidResource, Key: key, Err: errors.New(reason)}
}

// checkResource rejects sheets that expose no frames. Plain images pass.
func checkResource(alias string, res Resource) error {
	if res == nil {
		return invalidResource(alias, "backend returned no resource")
	}
	sheet, ok := res.(Sheet)
	if !ok {
		return nil
	}
	if len(sheet.FrameNames()) == 0 {
		return invalidResource(alias, "sprite sheet has no frames")
	}
	return nil
}
