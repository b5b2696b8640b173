package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/docstore/usecase"
	"docstore/internal/shared/docpath"
	apperrors "docstore/internal/shared/errors"
)

type setDocumentBody struct {
	Fields map[string]*model.FieldValue `json:"fields"`
}

type batchWriteBody struct {
	Writes []model.Write `json:"writes"`
}

// documentPath extracts the wildcard path segment and normalizes it.
func documentPath(c *fiber.Ctx) string {
	return strings.Trim(c.Params("*"), "/")
}

// writeError maps domain errors to HTTP status codes and a JSON error body.
func (h *HTTPHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case apperrors.IsInvalidPath(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_path",
			"message": err.Error(),
		})
	case apperrors.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "document_not_found",
			"message": err.Error(),
		})
	case apperrors.IsUnavailable(err):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "backend_unavailable",
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}

// SetDocument upserts the document at the wildcard path.
func (h *HTTPHandler) SetDocument(c *fiber.Ctx) error {
	path := documentPath(c)
	h.Log.Debug("Setting document via HTTP", "path", path)

	var body setDocumentBody
	if err := c.BodyParser(&body); err != nil {
		h.Log.Error("Failed to parse request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	if body.Fields == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_fields",
			"message": "Document fields are required",
		})
	}

	doc, err := h.DocumentUC.SetDocument(c.UserContext(), usecase.SetDocumentRequest{
		ProjectID:  c.Params("projectID"),
		DatabaseID: c.Params("databaseID"),
		Path:       path,
		Fields:     body.Fields,
	})
	if err != nil {
		h.Log.Error("Failed to set document", "path", path, "error", err)
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

// GetOrList dispatches on path parity: document paths return a single
// document, collection paths return the documents directly under them.
func (h *HTTPHandler) GetOrList(c *fiber.Ctx) error {
	path := documentPath(c)
	if docpath.IsCollectionPath(path) {
		return h.listDocuments(c, path)
	}
	return h.getDocument(c, path)
}

func (h *HTTPHandler) getDocument(c *fiber.Ctx, path string) error {
	h.Log.Debug("Getting document via HTTP", "path", path)

	doc, err := h.DocumentUC.GetDocument(c.UserContext(), usecase.GetDocumentRequest{
		ProjectID:  c.Params("projectID"),
		DatabaseID: c.Params("databaseID"),
		Path:       path,
	})
	if err != nil {
		h.Log.Error("Failed to get document", "path", path, "error", err)
		return h.writeError(c, err)
	}
	if !doc.Exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "document_not_found",
			"message": "Document does not exist: " + path,
		})
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

func (h *HTTPHandler) listDocuments(c *fiber.Ctx, path string) error {
	h.Log.Debug("Listing documents via HTTP", "collection", path)

	docs, err := h.DocumentUC.ListDocuments(c.UserContext(), usecase.ListDocumentsRequest{
		ProjectID:      c.Params("projectID"),
		DatabaseID:     c.Params("databaseID"),
		CollectionPath: path,
		PageSize:       int32(c.QueryInt("pageSize")),
		OrderBy:        c.Query("orderBy"),
	})
	if err != nil {
		h.Log.Error("Failed to list documents", "collection", path, "error", err)
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"documents": docs,
	})
}

// DeleteDocument removes the document at the wildcard path. Deleting a
// missing document succeeds.
func (h *HTTPHandler) DeleteDocument(c *fiber.Ctx) error {
	path := documentPath(c)
	h.Log.Debug("Deleting document via HTTP", "path", path)

	err := h.DocumentUC.DeleteDocument(c.UserContext(), usecase.DeleteDocumentRequest{
		ProjectID:  c.Params("projectID"),
		DatabaseID: c.Params("databaseID"),
		Path:       path,
	})
	if err != nil {
		h.Log.Error("Failed to delete document", "path", path, "error", err)
		return h.writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// BatchWrite applies a list of writes atomically in request order. All
// server timestamps in the batch resolve to the same commit time.
func (h *HTTPHandler) BatchWrite(c *fiber.Ctx) error {
	var body batchWriteBody
	if err := c.BodyParser(&body); err != nil {
		h.Log.Error("Failed to parse batch write body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request_body",
			"message": "Failed to parse request body",
		})
	}
	if len(body.Writes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "missing_writes",
			"message": "At least one write is required",
		})
	}

	h.Log.Debug("Batch write via HTTP", "writes", len(body.Writes))

	resp, err := h.DocumentUC.BatchWrite(c.UserContext(), usecase.BatchWriteRequest{
		ProjectID:  c.Params("projectID"),
		DatabaseID: c.Params("databaseID"),
		Writes:     body.Writes,
	})
	if err != nil {
		h.Log.Error("Batch write failed", "error", err)
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
