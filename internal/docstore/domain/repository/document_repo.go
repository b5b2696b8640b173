package repository

import (
	"context"
	"time"

	"docstore/internal/docstore/domain/model"
)

// DocumentRepository is the persistence port for documents. Paths are
// collection-relative document paths ("cities/SF") already validated by the
// caller.
type DocumentRepository interface {
	// SetDocument upserts the document body. It returns the stored document
	// and whether the write created it.
	SetDocument(ctx context.Context, projectID, databaseID, path string, fields map[string]*model.FieldValue, commitTime time.Time) (*model.Document, bool, error)

	// GetDocument reads a document. A missing document yields
	// errors.ErrDocumentNotFound.
	GetDocument(ctx context.Context, projectID, databaseID, path string) (*model.Document, error)

	// DeleteDocument removes a document. It reports whether the document
	// existed; deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, projectID, databaseID, path string) (bool, error)

	// ListDocuments returns the documents of a collection ordered by
	// orderBy ("path" when empty), at most pageSize (all when <= 0).
	ListDocuments(ctx context.Context, projectID, databaseID, collectionPath string, pageSize int32, orderBy string) ([]*model.Document, error)
}
