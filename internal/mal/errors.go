package mal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the export file does not exist.
var ErrNotFound = errors.New("export file not found")

// ErrJunkAfterRoot is wrapped by a *ParseError when content follows the
// document's root element.
var ErrJunkAfterRoot = errors.New("junk after document element")

// ParseError reports a malformed export document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse export: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
