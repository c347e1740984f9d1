package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRows is returned when a dataset holds no usable chart rows.
var ErrNoRows = errors.New("no chart rows")

// LoadError reports why a dataset could not be loaded. It is fatal to
// dashboard startup; the data source has to be fixed by hand.
type LoadError struct {
	Path   string
	Line   int
	Column string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load dataset")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to see the cause
func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(path, reason string, err error) *LoadError {
	return &LoadError{Path: path, Reason: reason, Err: err}
}

func cellErr(path string, line int, column, reason string, err error) *LoadError {
	return &LoadError{Path: path, Line: line, Column: column, Reason: reason, Err: err}
}
