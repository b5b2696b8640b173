package http

import (
	"docstore/internal/docstore/config"
	"docstore/internal/docstore/usecase"
	"docstore/internal/shared/eventbus"
	"docstore/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// HTTPHandler exposes the document-store REST API.
// Routes follow the hierarchy: Project → Database → Documents.
type HTTPHandler struct {
	DocumentUC usecase.DocumentUsecase
	Bus        *eventbus.Bus
	Journal    WriteJournal
	Realtime   config.RealtimeConfig
	Log        logger.Logger
}

// NewHTTPHandler creates the REST handler. bus may be nil when realtime
// listeners are disabled; journal may be nil when no catch-up source exists.
func NewHTTPHandler(documentUC usecase.DocumentUsecase, bus *eventbus.Bus, journal WriteJournal, realtime config.RealtimeConfig, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		DocumentUC: documentUC,
		Bus:        bus,
		Journal:    journal,
		Realtime:   realtime,
		Log:        log.WithComponent("http-handler"),
	}
}

// RegisterRoutes registers all API routes on the given router group.
func (h *HTTPHandler) RegisterRoutes(router fiber.Router) {
	dbAPI := router.Group("/projects/:projectID/databases/:databaseID")

	// Document paths are hierarchical (col/doc/col/doc/...), hence the
	// wildcard segment. GET dispatches on path parity: even segment counts
	// address documents, odd counts address collections.
	dbAPI.Put("/documents/*", h.SetDocument)
	dbAPI.Get("/documents/*", h.GetOrList)
	dbAPI.Delete("/documents/*", h.DeleteDocument)
	dbAPI.Post("/batchWrite", h.BatchWrite)

	h.registerListenRoutes(dbAPI)
}
