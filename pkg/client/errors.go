package client

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by SDK operations. Use errors.Is to classify.
var (
	// ErrInvalidPath reports a malformed collection or document path.
	ErrInvalidPath = errors.New("docstore: invalid path")

	// ErrNotFound reports an operation that required an existing document.
	// A plain Get on a missing document does not return it; the snapshot
	// reports Exists == false instead.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrBackendUnavailable reports a transport failure. The SDK does not
	// retry; retry policy belongs to the caller or the HTTP client.
	ErrBackendUnavailable = errors.New("docstore: backend unavailable")

	// ErrConverter reports a failure inside a user-supplied converter.
	ErrConverter = errors.New("docstore: converter error")
)

// converterError wraps a converter failure so that errors.Is matches both
// ErrConverter and the original cause.
type converterError struct {
	cause error
}

func (e *converterError) Error() string {
	return fmt.Sprintf("%v: %v", ErrConverter, e.cause)
}

func (e *converterError) Unwrap() error { return e.cause }

func (e *converterError) Is(target error) bool { return target == ErrConverter }

func wrapConverterError(err error) error {
	if err == nil {
		return nil
	}
	return &converterError{cause: err}
}

// invalidPathError carries the offending path while matching ErrInvalidPath.
type invalidPathError struct {
	path string
}

func (e *invalidPathError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidPath, e.path)
}

func (e *invalidPathError) Is(target error) bool { return target == ErrInvalidPath }

func newInvalidPathError(path string) error {
	return &invalidPathError{path: path}
}
