package client

import (
	"fmt"
	"time"
)

// DocumentSnapshot is an immutable read result: the document's existence and
// its decoded data at read time.
type DocumentSnapshot struct {
	// Ref identifies the document this snapshot was read from.
	Ref *DocumentRef

	// Exists reports whether the document was present at read time.
	Exists bool

	CreateTime time.Time
	UpdateTime time.Time

	data map[string]interface{}
}

func newSnapshot(ref *DocumentRef, doc *wireDocument) (*DocumentSnapshot, error) {
	snap := &DocumentSnapshot{
		Ref:        ref,
		Exists:     doc.Exists,
		CreateTime: doc.CreateTime,
		UpdateTime: doc.UpdateTime,
	}
	if !doc.Exists {
		return snap, nil
	}

	data, err := decodeFields(ref.c, doc.Fields)
	if err != nil {
		return nil, err
	}
	snap.data = data
	return snap, nil
}

// Data returns the decoded document fields, or nil when the document does
// not exist. Reference fields decode to DocumentRefs bound to the client
// that produced the snapshot.
func (s *DocumentSnapshot) Data() map[string]interface{} {
	if !s.Exists {
		return nil
	}
	return s.data
}

// DataOrErr is the strict accessor: it returns ErrNotFound when the document
// does not exist.
func (s *DocumentSnapshot) DataOrErr() (map[string]interface{}, error) {
	if !s.Exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Ref.Path)
	}
	return s.data, nil
}

// DataAt returns the value of a single field. It returns ErrNotFound when
// the document does not exist and an error when the field is absent.
func (s *DocumentSnapshot) DataAt(field string) (interface{}, error) {
	if !s.Exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Ref.Path)
	}
	v, ok := s.data[field]
	if !ok {
		return nil, fmt.Errorf("docstore: no field %q in %s", field, s.Ref.Path)
	}
	return v, nil
}
