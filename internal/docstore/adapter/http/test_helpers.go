package http

import (
	"context"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/docstore/usecase"
	"docstore/internal/shared/logger"
)

// mockDocumentUC implements usecase.DocumentUsecase for handler tests. Each
// method delegates to its Fn field when set.
type mockDocumentUC struct {
	SetDocumentFn    func(ctx context.Context, req usecase.SetDocumentRequest) (*model.Document, error)
	GetDocumentFn    func(ctx context.Context, req usecase.GetDocumentRequest) (*model.Document, error)
	DeleteDocumentFn func(ctx context.Context, req usecase.DeleteDocumentRequest) error
	ListDocumentsFn  func(ctx context.Context, req usecase.ListDocumentsRequest) ([]*model.Document, error)
	BatchWriteFn     func(ctx context.Context, req usecase.BatchWriteRequest) (*usecase.BatchWriteResponse, error)
}

func (m *mockDocumentUC) SetDocument(ctx context.Context, req usecase.SetDocumentRequest) (*model.Document, error) {
	if m.SetDocumentFn != nil {
		return m.SetDocumentFn(ctx, req)
	}
	return &model.Document{Path: req.Path, Fields: req.Fields, Exists: true}, nil
}

func (m *mockDocumentUC) GetDocument(ctx context.Context, req usecase.GetDocumentRequest) (*model.Document, error) {
	if m.GetDocumentFn != nil {
		return m.GetDocumentFn(ctx, req)
	}
	return &model.Document{Path: req.Path, Exists: true}, nil
}

func (m *mockDocumentUC) DeleteDocument(ctx context.Context, req usecase.DeleteDocumentRequest) error {
	if m.DeleteDocumentFn != nil {
		return m.DeleteDocumentFn(ctx, req)
	}
	return nil
}

func (m *mockDocumentUC) ListDocuments(ctx context.Context, req usecase.ListDocumentsRequest) ([]*model.Document, error) {
	if m.ListDocumentsFn != nil {
		return m.ListDocumentsFn(ctx, req)
	}
	return nil, nil
}

func (m *mockDocumentUC) BatchWrite(ctx context.Context, req usecase.BatchWriteRequest) (*usecase.BatchWriteResponse, error) {
	if m.BatchWriteFn != nil {
		return m.BatchWriteFn(ctx, req)
	}
	return &usecase.BatchWriteResponse{}, nil
}

// testLogger discards everything. Keeps handler test output quiet.
type testLogger struct{}

func (testLogger) Debug(args ...interface{})                       {}
func (testLogger) Info(args ...interface{})                        {}
func (testLogger) Warn(args ...interface{})                        {}
func (testLogger) Error(args ...interface{})                       {}
func (testLogger) Fatal(args ...interface{})                       {}
func (testLogger) Debugf(format string, args ...interface{})       {}
func (testLogger) Infof(format string, args ...interface{})        {}
func (testLogger) Warnf(format string, args ...interface{})        {}
func (testLogger) Errorf(format string, args ...interface{})       {}
func (testLogger) Fatalf(format string, args ...interface{})       {}
func (testLogger) WithFields(map[string]interface{}) logger.Logger { return testLogger{} }
func (testLogger) WithContext(context.Context) logger.Logger       { return testLogger{} }
func (testLogger) WithComponent(string) logger.Logger              { return testLogger{} }
