package libgen

import (
	"errors"
	"fmt"
)

// ErrNoDownloadAvailable indicates every mirror candidate was tried without finding a link
var ErrNoDownloadAvailable = errors.New("no download available")

// FetchError is returned when a page cannot be retrieved
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseStructureError reports markup that does not have the shape a layout expects.
// It never escapes Search; it is logged and the affected part is dropped.
type ParseStructureError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseStructureError) Error() string {
	return fmt.Sprintf("parse %s %q: %s", e.Field, e.Value, e.Reason)
}
