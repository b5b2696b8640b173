package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// startPingRecorder serves a minimal listen endpoint that records keepalive
// frames and returns the backend base URL.
func startPingRecorder(t *testing.T, pings chan<- struct{}) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	ws := app.Group("/api/v1/projects/:projectID/databases/:databaseID/ws")
	ws.Use("/listen", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/listen", websocket.New(func(conn *websocket.Conn) {
		for {
			var req struct {
				Action string `json:"action"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Action == "ping" {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestWatchSendsKeepalivePings(t *testing.T) {
	old := listenPingInterval
	listenPingInterval = 50 * time.Millisecond
	defer func() { listenPingInterval = old }()

	pings := make(chan struct{}, 16)
	endpoint := startPingRecorder(t, pings)

	c, err := New(Config{ProjectID: "p1", Endpoint: endpoint})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watchErr error
	for attempt := 0; attempt < 20; attempt++ {
		if _, watchErr = c.Doc("cities/MTV").Watch(ctx); watchErr == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, watchErr)

	// An idle watch must keep pinging so the server's read deadline never
	// fires.
	for i := 0; i < 2; i++ {
		select {
		case <-pings:
		case <-time.After(2 * time.Second):
			t.Fatal("watch sent no keepalive ping")
		}
	}
}
