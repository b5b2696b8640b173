package client

import (
	"context"
	"fmt"
)

// Converter maps between an application type and the document field mapping.
// Both directions must be pure; the round-trip must be semantically equal for
// every value the converter claims to support, including nested references.
type Converter[T any] interface {
	// ToDocument produces the field mapping written as the document body.
	// Sentinel values pass through unevaluated for backend resolution.
	ToDocument(value T) (map[string]interface{}, error)

	// FromDocument decodes a snapshot into the application type. It is only
	// called for existing documents.
	FromDocument(snap *DocumentSnapshot) (T, error)
}

// WithConverter binds a converter to a document reference, returning a typed
// handle. The original reference is not modified.
func WithConverter[T any](ref *DocumentRef, conv Converter[T]) *TypedRef[T] {
	return &TypedRef[T]{Ref: ref, conv: conv}
}

// TypedRef is a document reference bound to a converter. All operations
// through it convert via the bound converter.
type TypedRef[T any] struct {
	Ref  *DocumentRef
	conv Converter[T]
}

// Set converts value and writes it as the document body. Converter failures
// match ErrConverter via errors.Is.
func (r *TypedRef[T]) Set(ctx context.Context, value T) error {
	data, err := r.conv.ToDocument(value)
	if err != nil {
		return wrapConverterError(err)
	}
	return r.Ref.Set(ctx, data)
}

// Get reads the document into a typed snapshot.
func (r *TypedRef[T]) Get(ctx context.Context) (*TypedSnapshot[T], error) {
	snap, err := r.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &TypedSnapshot[T]{Snapshot: snap, conv: r.conv}, nil
}

// Delete removes the document.
func (r *TypedRef[T]) Delete(ctx context.Context) error {
	return r.Ref.Delete(ctx)
}

// TypedSnapshot is a read result decoded through a converter.
type TypedSnapshot[T any] struct {
	Snapshot *DocumentSnapshot
	conv     Converter[T]
}

// Exists reports whether the document was present at read time.
func (s *TypedSnapshot[T]) Exists() bool {
	return s.Snapshot.Exists
}

// Data converts the snapshot into the application type. It returns
// ErrNotFound when the document does not exist; converter failures match
// ErrConverter via errors.Is.
func (s *TypedSnapshot[T]) Data() (T, error) {
	var zero T
	if !s.Snapshot.Exists {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, s.Snapshot.Ref.Path)
	}
	value, err := s.conv.FromDocument(s.Snapshot)
	if err != nil {
		return zero, wrapConverterError(err)
	}
	return value, nil
}
