package client

import (
	"context"

	"github.com/google/uuid"

	"docstore/internal/shared/docpath"
)

// CollectionRef identifies a collection. It never owns data; it only names a
// location. References are immutable value-like handles.
type CollectionRef struct {
	c *Client

	// Path is the slash-separated collection path.
	Path string
	// ID is the final path segment.
	ID string

	err error
}

// Doc returns a handle for the document with the given ID in this collection.
func (r *CollectionRef) Doc(id string) *DocumentRef {
	if r.err != nil {
		return &DocumentRef{c: r.c, err: r.err}
	}
	if !docpath.IsValidID(id) {
		return &DocumentRef{c: r.c, err: newInvalidPathError(id)}
	}
	path := docpath.Append(r.Path, id)
	return &DocumentRef{c: r.c, Path: path, ID: id}
}

// NewDoc returns a handle for a new document with a generated unique ID.
// Nothing is persisted until a write occurs.
func (r *CollectionRef) NewDoc() *DocumentRef {
	return r.Doc(uuid.NewString())
}

// Parent returns the document this collection is nested under, or nil for a
// top-level collection.
func (r *CollectionRef) Parent() *DocumentRef {
	if r.err != nil {
		return nil
	}
	parent, err := docpath.Parent(r.Path)
	if err != nil {
		return nil
	}
	return r.c.Doc(parent)
}

// Documents reads every document directly under this collection, ordered by
// path.
func (r *CollectionRef) Documents(ctx context.Context) ([]*DocumentSnapshot, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.c.logf("list %s", r.Path)
	docs, err := r.c.transport.ListDocuments(ctx, r.Path)
	if err != nil {
		r.c.logf("list %s failed: %v", r.Path, err)
		return nil, err
	}

	snapshots := make([]*DocumentSnapshot, 0, len(docs))
	for i := range docs {
		snap, err := newSnapshot(r.c.Doc(docs[i].Path), &docs[i])
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// DocumentRef identifies a document. Equality is by Path.
type DocumentRef struct {
	c *Client

	// Path is the slash-separated document path.
	Path string
	// ID is the final path segment.
	ID string

	err error
}

// Collection returns a handle for a subcollection of this document.
func (r *DocumentRef) Collection(id string) *CollectionRef {
	if r.err != nil {
		return &CollectionRef{c: r.c, err: r.err}
	}
	if !docpath.IsValidID(id) {
		return &CollectionRef{c: r.c, err: newInvalidPathError(id)}
	}
	path := docpath.Append(r.Path, id)
	return &CollectionRef{c: r.c, Path: path, ID: id}
}

// Parent returns the collection containing this document.
func (r *DocumentRef) Parent() *CollectionRef {
	if r.err != nil {
		return nil
	}
	parent, err := docpath.Parent(r.Path)
	if err != nil {
		return nil
	}
	id, _ := docpath.CollectionID(parent)
	return &CollectionRef{c: r.c, Path: parent, ID: id}
}

// Set writes data as the full document body, creating the document if absent.
// ServerTimestamp sentinels in data resolve to the commit time.
func (r *DocumentRef) Set(ctx context.Context, data map[string]interface{}) error {
	if r.err != nil {
		return r.err
	}
	fields, err := encodeFields(data)
	if err != nil {
		return err
	}

	r.c.logf("set %s (%d fields)", r.Path, len(fields))
	_, err = r.c.transport.SetDocument(ctx, r.Path, fields)
	if err != nil {
		r.c.logf("set %s failed: %v", r.Path, err)
		return err
	}
	return nil
}

// Get reads the document. A missing document is not an error; the returned
// snapshot reports Exists == false.
func (r *DocumentRef) Get(ctx context.Context) (*DocumentSnapshot, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.c.logf("get %s", r.Path)
	doc, err := r.c.transport.GetDocument(ctx, r.Path)
	if err != nil {
		r.c.logf("get %s failed: %v", r.Path, err)
		return nil, err
	}
	return newSnapshot(r, doc)
}

// Delete removes the document. Deleting a missing document succeeds.
func (r *DocumentRef) Delete(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}

	r.c.logf("delete %s", r.Path)
	if err := r.c.transport.DeleteDocument(ctx, r.Path); err != nil {
		r.c.logf("delete %s failed: %v", r.Path, err)
		return err
	}
	return nil
}
