package usecase

import (
	"context"
	"fmt"
	"time"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/docstore/domain/repository"
	"docstore/internal/shared/docpath"
	"docstore/internal/shared/errors"
	"docstore/internal/shared/eventbus"
	"docstore/internal/shared/logger"
)

// DocumentUsecase defines the core document-store operations.
type DocumentUsecase interface {
	SetDocument(ctx context.Context, req SetDocumentRequest) (*model.Document, error)
	GetDocument(ctx context.Context, req GetDocumentRequest) (*model.Document, error)
	DeleteDocument(ctx context.Context, req DeleteDocumentRequest) error
	ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*model.Document, error)
	BatchWrite(ctx context.Context, req BatchWriteRequest) (*BatchWriteResponse, error)
}

type documentUsecase struct {
	repo   repository.DocumentRepository
	bus    *eventbus.Bus
	logger logger.Logger
	now    func() time.Time
}

// NewDocumentUsecase creates the document usecase. bus may be nil when no
// listeners are wired (tests).
func NewDocumentUsecase(repo repository.DocumentRepository, bus *eventbus.Bus, log logger.Logger) DocumentUsecase {
	return &documentUsecase{
		repo:   repo,
		bus:    bus,
		logger: log.WithComponent("document-usecase"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetDocument upserts a document. Server-timestamp sentinels in the payload
// are resolved to a single commit time before persisting.
func (uc *documentUsecase) SetDocument(ctx context.Context, req SetDocumentRequest) (*model.Document, error) {
	if err := docpath.ValidateDocumentPath(req.Path); err != nil {
		return nil, err
	}

	commitTime := uc.now()
	model.ResolveServerTimestamps(req.Fields, commitTime)

	doc, created, err := uc.repo.SetDocument(ctx, req.ProjectID, req.DatabaseID, req.Path, req.Fields, commitTime)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"path": req.Path, "error": err}).Error("Failed to set document")
		return nil, fmt.Errorf("failed to set document: %w", err)
	}

	eventType := model.EventModified
	if created {
		eventType = model.EventAdded
	}
	uc.publishWriteEvent(ctx, model.WriteEvent{
		Type:       eventType,
		ProjectID:  req.ProjectID,
		DatabaseID: req.DatabaseID,
		Path:       doc.Path,
		Fields:     doc.Fields,
		CommitTime: commitTime,
		Version:    doc.Version,
	})

	uc.logger.WithFields(map[string]interface{}{"path": doc.Path, "created": created}).Info("Document written")
	return doc, nil
}

// GetDocument reads a document. A missing document is not an error: the
// returned document carries Exists=false.
func (uc *documentUsecase) GetDocument(ctx context.Context, req GetDocumentRequest) (*model.Document, error) {
	if err := docpath.ValidateDocumentPath(req.Path); err != nil {
		return nil, err
	}

	doc, err := uc.repo.GetDocument(ctx, req.ProjectID, req.DatabaseID, req.Path)
	if err != nil {
		if errors.IsNotFound(err) {
			docID, _ := docpath.DocumentID(req.Path)
			colID, _ := docpath.CollectionID(req.Path)
			return &model.Document{
				ProjectID:    req.ProjectID,
				DatabaseID:   req.DatabaseID,
				CollectionID: colID,
				DocumentID:   docID,
				Path:         req.Path,
				Exists:       false,
			}, nil
		}
		uc.logger.WithFields(map[string]interface{}{"path": req.Path, "error": err}).Error("Failed to get document")
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// DeleteDocument removes a document. Deleting a missing document succeeds.
func (uc *documentUsecase) DeleteDocument(ctx context.Context, req DeleteDocumentRequest) error {
	if err := docpath.ValidateDocumentPath(req.Path); err != nil {
		return err
	}

	existed, err := uc.repo.DeleteDocument(ctx, req.ProjectID, req.DatabaseID, req.Path)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"path": req.Path, "error": err}).Error("Failed to delete document")
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if existed {
		uc.publishWriteEvent(ctx, model.WriteEvent{
			Type:       model.EventRemoved,
			ProjectID:  req.ProjectID,
			DatabaseID: req.DatabaseID,
			Path:       req.Path,
			CommitTime: uc.now(),
		})
	}

	uc.logger.WithFields(map[string]interface{}{"path": req.Path, "existed": existed}).Info("Document deleted")
	return nil
}

// ListDocuments lists the documents of a collection.
func (uc *documentUsecase) ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*model.Document, error) {
	if err := docpath.ValidateCollectionPath(req.CollectionPath); err != nil {
		return nil, err
	}

	docs, err := uc.repo.ListDocuments(ctx, req.ProjectID, req.DatabaseID, req.CollectionPath, req.PageSize, req.OrderBy)
	if err != nil {
		uc.logger.WithFields(map[string]interface{}{"collection": req.CollectionPath, "error": err}).Error("Failed to list documents")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// BatchWrite applies writes in request order. All server-timestamp sentinels
// in the batch resolve to the same commit time.
func (uc *documentUsecase) BatchWrite(ctx context.Context, req BatchWriteRequest) (*BatchWriteResponse, error) {
	if len(req.Writes) == 0 {
		return nil, errors.NewValidationError("batch write requires at least one write")
	}

	for _, w := range req.Writes {
		if err := docpath.ValidateDocumentPath(w.Path); err != nil {
			return nil, err
		}
		switch w.Type {
		case model.WriteTypeSet, model.WriteTypeDelete:
		default:
			return nil, errors.NewValidationError("unsupported write type").WithDetail("type", string(w.Type))
		}
	}

	commitTime := uc.now()
	results := make([]model.WriteResult, 0, len(req.Writes))

	for _, w := range req.Writes {
		switch w.Type {
		case model.WriteTypeSet:
			model.ResolveServerTimestamps(w.Fields, commitTime)
			doc, created, err := uc.repo.SetDocument(ctx, req.ProjectID, req.DatabaseID, w.Path, w.Fields, commitTime)
			if err != nil {
				return nil, fmt.Errorf("batch write failed at %q: %w", w.Path, err)
			}
			eventType := model.EventModified
			if created {
				eventType = model.EventAdded
			}
			uc.publishWriteEvent(ctx, model.WriteEvent{
				Type:       eventType,
				ProjectID:  req.ProjectID,
				DatabaseID: req.DatabaseID,
				Path:       doc.Path,
				Fields:     doc.Fields,
				CommitTime: commitTime,
				Version:    doc.Version,
			})
			results = append(results, model.WriteResult{Path: w.Path, UpdateTime: doc.UpdateTime})

		case model.WriteTypeDelete:
			existed, err := uc.repo.DeleteDocument(ctx, req.ProjectID, req.DatabaseID, w.Path)
			if err != nil {
				return nil, fmt.Errorf("batch write failed at %q: %w", w.Path, err)
			}
			if existed {
				uc.publishWriteEvent(ctx, model.WriteEvent{
					Type:       model.EventRemoved,
					ProjectID:  req.ProjectID,
					DatabaseID: req.DatabaseID,
					Path:       w.Path,
					CommitTime: commitTime,
				})
			}
			results = append(results, model.WriteResult{Path: w.Path, UpdateTime: commitTime})
		}
	}

	uc.logger.WithFields(map[string]interface{}{"writes": len(req.Writes)}).Info("Batch write committed")
	return &BatchWriteResponse{WriteResults: results}, nil
}

// publishWriteEvent notifies listeners of a committed change. Event delivery
// failures are logged, never surfaced: the write already committed.
func (uc *documentUsecase) publishWriteEvent(ctx context.Context, event model.WriteEvent) {
	if uc.bus == nil {
		return
	}
	if err := uc.bus.Publish(ctx, eventbus.NewEventWithSource(model.EventTopicDocumentWrite, event, "document-usecase")); err != nil {
		uc.logger.WithFields(map[string]interface{}{"path": event.Path, "error": err}).Error("Failed to publish write event")
	}
}
