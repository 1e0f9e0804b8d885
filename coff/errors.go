package coff

import "fmt"

// A wrappedError is an error wrapped with a location for context, the same
// shape used throughout this package wherever an operation needs to name
// the object or section that triggered it.
type wrappedError struct {
	location string
	inner    error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %v", e.location, e.inner)
}

func (e *wrappedError) Unwrap() error {
	return e.inner
}

func wrapError(e error, loc string) error {
	if we, ok := e.(*wrappedError); ok {
		return &wrappedError{location: loc + ": " + we.location, inner: we.inner}
	}
	return &wrappedError{location: loc, inner: e}
}

func wrapErrorf(e error, f string, a ...interface{}) error {
	return wrapError(e, fmt.Sprintf(f, a...))
}
