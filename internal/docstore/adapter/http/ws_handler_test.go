package http

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/docstore/config"
	"docstore/internal/docstore/domain/model"
	"docstore/internal/shared/eventbus"
)

// stubJournal is an in-memory WriteJournal for handler tests.
type stubJournal struct {
	events []model.WriteEvent

	lastPath string
	lastID   string
}

func (s *stubJournal) EventsSince(ctx context.Context, projectID, databaseID, path, lastID string) ([]model.WriteEvent, error) {
	s.lastPath = path
	s.lastID = lastID
	return s.events, nil
}

// listenFrame mirrors WebSocketMessage with the payload kept raw for
// per-test decoding.
type listenFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// startListenServer serves the handler's routes on a loopback listener and
// returns the listen endpoint URL.
func startListenServer(t *testing.T, h *HTTPHandler) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.RegisterRoutes(app.Group("/api/v1"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/api/v1/projects/p1/databases/d1/ws/listen"
}

func dialListen(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	dialer := &websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	var conn *websocket.Conn
	var err error
	for attempt := 0; attempt < 20; attempt++ {
		conn, _, err = dialer.Dial(url, nil)
		if err == nil {
			t.Cleanup(func() { conn.Close() })
			return conn
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", url, err)
	return nil
}

func readFrame(t *testing.T, conn *websocket.Conn) listenFrame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame listenFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestListenBufferSizeFromConfig(t *testing.T) {
	h := NewHTTPHandler(&mockDocumentUC{}, nil, nil, config.RealtimeConfig{ClientSendChannelBuffer: 7}, testLogger{})
	assert.Equal(t, 7, h.listenBufferSize())

	h = NewHTTPHandler(&mockDocumentUC{}, nil, nil, config.RealtimeConfig{}, testLogger{})
	assert.Equal(t, 100, h.listenBufferSize())
}

func TestListenPingKeepsSocketUsable(t *testing.T) {
	bus := eventbus.New(testLogger{})
	h := NewHTTPHandler(&mockDocumentUC{}, bus, nil, config.DefaultConfig().Realtime, testLogger{})

	conn := dialListen(t, startListenServer(t, h))

	require.NoError(t, conn.WriteJSON(ListenRequest{Action: "subscribe", Path: "cities/MTV"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "subscription_confirmed", frame.Type)

	require.NoError(t, conn.WriteJSON(ListenRequest{Action: "ping"}))
	frame = readFrame(t, conn)
	assert.Equal(t, "pong", frame.Type)

	// The socket must still deliver events after the keepalive exchange.
	err := bus.Publish(context.Background(), eventbus.NewEventWithSource(
		model.EventTopicDocumentWrite,
		model.WriteEvent{
			Type:       model.EventModified,
			ProjectID:  "p1",
			DatabaseID: "d1",
			Path:       "cities/MTV",
			Fields:     map[string]*model.FieldValue{"name": model.NewFieldValue("Mountain View")},
			CommitTime: time.Now().UTC(),
			Version:    2,
		},
		"test",
	))
	require.NoError(t, err)

	frame = readFrame(t, conn)
	require.Equal(t, "document_change", frame.Type)

	var event model.WriteEvent
	require.NoError(t, json.Unmarshal(frame.Data, &event))
	assert.Equal(t, model.EventModified, event.Type)
	assert.Equal(t, "cities/MTV", event.Path)
}

func TestListenSubscribeReplaysJournal(t *testing.T) {
	journal := &stubJournal{
		events: []model.WriteEvent{{
			Type:       model.EventAdded,
			ProjectID:  "p1",
			DatabaseID: "d1",
			Path:       "cities/MTV",
			Fields:     map[string]*model.FieldValue{"population": model.NewFieldValue(int64(77846))},
			CommitTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Version:    1,
		}},
	}
	bus := eventbus.New(testLogger{})
	h := NewHTTPHandler(&mockDocumentUC{}, bus, journal, config.DefaultConfig().Realtime, testLogger{})

	conn := dialListen(t, startListenServer(t, h))

	require.NoError(t, conn.WriteJSON(ListenRequest{Action: "subscribe", Path: "cities/MTV", Since: "0"}))
	frame := readFrame(t, conn)
	require.Equal(t, "subscription_confirmed", frame.Type)

	frame = readFrame(t, conn)
	require.Equal(t, "document_change", frame.Type)

	var event model.WriteEvent
	require.NoError(t, json.Unmarshal(frame.Data, &event))
	assert.Equal(t, model.EventAdded, event.Type)
	assert.Equal(t, "cities/MTV", event.Path)
	assert.Equal(t, int64(1), event.Version)

	assert.Equal(t, "cities/MTV", journal.lastPath)
	assert.Equal(t, "0", journal.lastID)
}

func TestListenSubscribeWithoutSinceSkipsJournal(t *testing.T) {
	journal := &stubJournal{events: []model.WriteEvent{{Type: model.EventAdded, Path: "cities/MTV"}}}
	bus := eventbus.New(testLogger{})
	h := NewHTTPHandler(&mockDocumentUC{}, bus, journal, config.DefaultConfig().Realtime, testLogger{})

	conn := dialListen(t, startListenServer(t, h))

	require.NoError(t, conn.WriteJSON(ListenRequest{Action: "subscribe", Path: "cities/MTV"}))
	frame := readFrame(t, conn)
	require.Equal(t, "subscription_confirmed", frame.Type)
	assert.Empty(t, journal.lastPath)
}
