package usecase

import (
	"docstore/internal/docstore/domain/model"
)

// Request/Response DTOs - Centralized type definitions

type SetDocumentRequest struct {
	ProjectID  string                       `json:"projectId" validate:"required"`
	DatabaseID string                       `json:"databaseId" validate:"required"`
	Path       string                       `json:"path" validate:"required"`
	Fields     map[string]*model.FieldValue `json:"fields" validate:"required"`
}

type GetDocumentRequest struct {
	ProjectID  string `json:"projectId" validate:"required"`
	DatabaseID string `json:"databaseId" validate:"required"`
	Path       string `json:"path" validate:"required"`
}

type DeleteDocumentRequest struct {
	ProjectID  string `json:"projectId" validate:"required"`
	DatabaseID string `json:"databaseId" validate:"required"`
	Path       string `json:"path" validate:"required"`
}

type ListDocumentsRequest struct {
	ProjectID      string `json:"projectId" validate:"required"`
	DatabaseID     string `json:"databaseId" validate:"required"`
	CollectionPath string `json:"collectionPath" validate:"required"`
	PageSize       int32  `json:"pageSize,omitempty"`
	OrderBy        string `json:"orderBy,omitempty"`
}

type BatchWriteRequest struct {
	ProjectID  string        `json:"projectId" validate:"required"`
	DatabaseID string        `json:"databaseId" validate:"required"`
	Writes     []model.Write `json:"writes" validate:"required"`
}

type BatchWriteResponse struct {
	WriteResults []model.WriteResult `json:"writeResults"`
}
