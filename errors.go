package textdiff

import (
	"errors"
	"fmt"
)

// ErrNoDiff is returned when rendering is requested before a successful Diff.
var ErrNoDiff = errors.New("textdiff: no diff computed")

// ReadError reports an I/O failure while opening, decoding or scanning a
// byte source.
type ReadError struct {
	Source string // provider name
	Op     string // "open", "read" or "close"
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("textdiff: %s %q: %v", e.Op, e.Source, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a value a caller should never have passed.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("textdiff: invalid %s %q", e.Field, e.Value)
}

// ErrNoSource is returned when an operation targets a side with no source.
var ErrNoSource = errors.New("textdiff: no source assigned")
