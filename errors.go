package speech_data

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyBatch is returned by the collators when a batch has no samples,
// either as given or after it was halved.
var ErrEmptyBatch = errors.New("empty batch")

// ConfigError reports a configuration that cannot be served.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IndexError reports an access outside [0, Length).
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}
