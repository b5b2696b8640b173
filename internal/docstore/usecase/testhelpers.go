// Centralized test helpers for document usecase tests.
// Shared fakes live here to avoid redeclaration across test files.
package usecase

import (
	"context"
	"sync"
	"time"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/shared/docpath"
	"docstore/internal/shared/errors"
	"docstore/internal/shared/logger"
)

// fakeDocumentRepo is an in-memory DocumentRepository used by usecase tests.
type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*model.Document

	// failWith, when set, is returned by every operation.
	failWith error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*model.Document)}
}

func repoKey(projectID, databaseID, path string) string {
	return projectID + "|" + databaseID + "|" + path
}

func (f *fakeDocumentRepo) SetDocument(ctx context.Context, projectID, databaseID, path string, fields map[string]*model.FieldValue, commitTime time.Time) (*model.Document, bool, error) {
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := repoKey(projectID, databaseID, path)
	existing, ok := f.docs[key]

	docID, _ := docpath.DocumentID(path)
	colID, _ := docpath.CollectionID(path)
	doc := &model.Document{
		ProjectID:    projectID,
		DatabaseID:   databaseID,
		CollectionID: colID,
		DocumentID:   docID,
		Path:         path,
		Fields:       fields,
		CreateTime:   commitTime,
		UpdateTime:   commitTime,
		Version:      1,
		Exists:       true,
	}
	if ok {
		doc.CreateTime = existing.CreateTime
		doc.Version = existing.Version + 1
	}
	f.docs[key] = doc
	return doc, !ok, nil
}

func (f *fakeDocumentRepo) GetDocument(ctx context.Context, projectID, databaseID, path string) (*model.Document, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[repoKey(projectID, databaseID, path)]
	if !ok {
		return nil, errors.NewDocumentNotFoundError(path)
	}
	return doc, nil
}

func (f *fakeDocumentRepo) DeleteDocument(ctx context.Context, projectID, databaseID, path string) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := repoKey(projectID, databaseID, path)
	_, ok := f.docs[key]
	delete(f.docs, key)
	return ok, nil
}

func (f *fakeDocumentRepo) ListDocuments(ctx context.Context, projectID, databaseID, collectionPath string, pageSize int32, orderBy string) ([]*model.Document, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Document
	for _, doc := range f.docs {
		if doc.ProjectID != projectID || doc.DatabaseID != databaseID {
			continue
		}
		parent, err := docpath.Parent(doc.Path)
		if err == nil && parent == collectionPath {
			out = append(out, doc)
		}
	}
	if pageSize > 0 && int32(len(out)) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func newTestUsecase() (DocumentUsecase, *fakeDocumentRepo) {
	repo := newFakeDocumentRepo()
	return NewDocumentUsecase(repo, nil, logger.NewLoggerWithConfig("error", "text")), repo
}
