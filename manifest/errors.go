package manifest

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyLabel is wrapped by LabelReadError when a label file has no lines.
var ErrEmptyLabel = errors.New("label file is empty")

// ManifestReadError reports a manifest that could not be read, or a record
// within it that has fewer than two fields. Line is 0 when the failure is
// not tied to a particular record.
type ManifestReadError struct {
	Path string
	Line int
	Err  error
}

func (e *ManifestReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestReadError) Unwrap() error { return e.Err }

// LabelReadError reports a label file that is missing, unreadable or empty.
type LabelReadError struct {
	Path string
	Err  error
}

func (e *LabelReadError) Error() string {
	return fmt.Sprintf("label %s: %v", e.Path, e.Err)
}

func (e *LabelReadError) Unwrap() error { return e.Err }
