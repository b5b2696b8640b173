package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/shared/docpath"
	"docstore/internal/shared/eventbus"
)

// WebSocketMessage is the envelope for every server-to-client frame.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ListenRequest is a client frame on the listen socket. Since optionally
// carries the last journal stream ID the client has seen; when set, the
// journaled history after it is replayed on subscribe ("0" for everything).
type ListenRequest struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Since  string `json:"since,omitempty"`
}

// WriteJournal serves the committed history of a document path so listeners
// can catch up on changes they missed.
type WriteJournal interface {
	EventsSince(ctx context.Context, projectID, databaseID, path, lastID string) ([]model.WriteEvent, error)
}

// listenConn tracks one listen socket and the document paths it watches.
type listenConn struct {
	projectID  string
	databaseID string
	events     chan model.WriteEvent

	mu    sync.Mutex
	paths map[string]struct{}
}

func (lc *listenConn) watching(path string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_, ok := lc.paths[path]
	return ok
}

// listenHub fans committed write events out to listen sockets. It holds the
// single bus subscription for the whole handler.
type listenHub struct {
	mu    sync.RWMutex
	conns map[string]*listenConn
}

func newListenHub() *listenHub {
	return &listenHub{conns: make(map[string]*listenConn)}
}

func (hub *listenHub) add(id string, conn *listenConn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.conns[id] = conn
}

func (hub *listenHub) remove(id string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.conns, id)
}

// dispatch delivers the event to every matching connection. Slow consumers
// drop events rather than block the bus.
func (hub *listenHub) dispatch(event model.WriteEvent) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	delivered := 0
	for _, conn := range hub.conns {
		if conn.projectID != event.ProjectID || conn.databaseID != event.DatabaseID {
			continue
		}
		if !conn.watching(event.Path) {
			continue
		}
		select {
		case conn.events <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// registerListenRoutes wires the realtime listen endpoint. Without a bus
// there is nothing to forward, so the endpoint is not registered.
func (h *HTTPHandler) registerListenRoutes(router fiber.Router) {
	if h.Bus == nil {
		return
	}

	hub := newListenHub()
	h.Bus.Subscribe(model.EventTopicDocumentWrite, func(ctx context.Context, e eventbus.Event) error {
		event, ok := e.Data().(model.WriteEvent)
		if !ok {
			return nil
		}
		hub.dispatch(event)
		return nil
	})

	wsGroup := router.Group("/ws")
	wsGroup.Use("/listen", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("projectID", c.Params("projectID"))
			c.Locals("databaseID", c.Params("databaseID"))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("/listen", websocket.New(func(conn *websocket.Conn) {
		h.handleListenConnection(hub, conn)
	}))
}

// handleListenConnection services one listen socket until it closes.
func (h *HTTPHandler) handleListenConnection(hub *listenHub, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriberID := uuid.NewString()
	lc := &listenConn{
		projectID:  conn.Locals("projectID").(string),
		databaseID: conn.Locals("databaseID").(string),
		events:     make(chan model.WriteEvent, h.listenBufferSize()),
		paths:      make(map[string]struct{}),
	}

	hub.add(subscriberID, lc)
	h.Log.Info("Listen connection established", "subscriberID", subscriberID)

	defer func() {
		hub.remove(subscriberID)
		h.Log.Info("Listen connection closed", "subscriberID", subscriberID)
	}()

	go h.forwardEvents(ctx, conn, subscriberID, lc.events)

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req ListenRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Error("Listen socket error", "subscriberID", subscriberID, "error", err)
			}
			return
		}

		switch req.Action {
		case "subscribe":
			if err := docpath.ValidateDocumentPath(req.Path); err != nil {
				h.sendListenError(conn, "invalid_path", "Invalid document path: "+req.Path)
				continue
			}
			lc.mu.Lock()
			lc.paths[req.Path] = struct{}{}
			lc.mu.Unlock()
			h.Log.Debug("Subscribed to path", "subscriberID", subscriberID, "path", req.Path)
			conn.WriteJSON(WebSocketMessage{
				Type: "subscription_confirmed",
				Data: map[string]interface{}{"path": req.Path},
			})
			if req.Since != "" {
				h.replayJournal(ctx, lc, req.Path, req.Since)
			}
		case "unsubscribe":
			lc.mu.Lock()
			delete(lc.paths, req.Path)
			lc.mu.Unlock()
			conn.WriteJSON(WebSocketMessage{
				Type: "unsubscription_confirmed",
				Data: map[string]interface{}{"path": req.Path},
			})
		case "ping":
			// Keepalive. Each frame resets the read deadline above.
			conn.WriteJSON(WebSocketMessage{Type: "pong"})
		default:
			h.sendListenError(conn, "invalid_action", "Unknown action: "+req.Action)
		}
	}
}

// listenBufferSize returns the per-connection event buffer size.
func (h *HTTPHandler) listenBufferSize() int {
	if h.Realtime.ClientSendChannelBuffer > 0 {
		return h.Realtime.ClientSendChannelBuffer
	}
	return 100
}

// replayJournal enqueues the journaled history of a path after the given
// stream ID. Replayed events flow through the same channel as live ones, so
// slow consumers drop here too.
func (h *HTTPHandler) replayJournal(ctx context.Context, lc *listenConn, path, since string) {
	if h.Journal == nil {
		return
	}

	events, err := h.Journal.EventsSince(ctx, lc.projectID, lc.databaseID, path, since)
	if err != nil {
		h.Log.Error("Journal replay failed", "path", path, "error", err)
		return
	}
	for _, event := range events {
		select {
		case lc.events <- event:
		default:
		}
	}
}

// forwardEvents pushes document changes to the client until the connection
// context is cancelled.
func (h *HTTPHandler) forwardEvents(ctx context.Context, conn *websocket.Conn, subscriberID string, events <-chan model.WriteEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if err := conn.WriteJSON(WebSocketMessage{Type: "document_change", Data: event}); err != nil {
				h.Log.Error("Failed to forward event", "subscriberID", subscriberID, "error", err)
				return
			}
		}
	}
}

func (h *HTTPHandler) sendListenError(conn *websocket.Conn, errorType, message string) {
	conn.WriteJSON(WebSocketMessage{
		Type: "error",
		Data: fiber.Map{"error": errorType, "message": message},
	})
}
