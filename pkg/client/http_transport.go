package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
)

// httpTransport talks JSON to the backend's REST surface.
type httpTransport struct {
	baseURL   string
	wsURL     string
	authToken string
	hc        *http.Client
	logf      func(format string, args ...interface{})
}

func newHTTPTransport(cfg Config, logf func(format string, args ...interface{})) *httpTransport {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	base := strings.TrimRight(cfg.Endpoint, "/")
	dbPath := fmt.Sprintf("/api/v1/projects/%s/databases/%s", cfg.ProjectID, cfg.DatabaseID)

	wsBase := strings.Replace(base, "https://", "wss://", 1)
	wsBase = strings.Replace(wsBase, "http://", "ws://", 1)

	return &httpTransport{
		baseURL:   base + dbPath,
		wsURL:     wsBase + dbPath + "/ws/listen",
		authToken: cfg.AuthToken,
		hc:        hc,
		logf:      logf,
	}
}

// errorBody is the backend's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (t *httpTransport) do(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.authToken)
	}

	resp, err := t.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return resp, nil
}

// checkStatus maps non-2xx responses to SDK errors.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusBadRequest && body.Error == "invalid_path":
		return fmt.Errorf("%w: %s", ErrInvalidPath, body.Message)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body.Message)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: backend returned %d: %s", ErrBackendUnavailable, resp.StatusCode, body.Message)
	default:
		return fmt.Errorf("docstore: backend returned %d: %s %s", resp.StatusCode, body.Error, body.Message)
	}
}

func (t *httpTransport) SetDocument(ctx context.Context, path string, fields map[string]interface{}) (*wireDocument, error) {
	resp, err := t.do(ctx, http.MethodPut, t.baseURL+"/documents/"+path, map[string]interface{}{
		"fields": fields,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var doc wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
	}
	return &doc, nil
}

func (t *httpTransport) GetDocument(ctx context.Context, path string) (*wireDocument, error) {
	resp, err := t.do(ctx, http.MethodGet, t.baseURL+"/documents/"+path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Absence is not an error for a plain read.
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return &wireDocument{Path: path, Exists: false}, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var doc wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
	}
	return &doc, nil
}

func (t *httpTransport) DeleteDocument(ctx context.Context, path string) error {
	resp, err := t.do(ctx, http.MethodDelete, t.baseURL+"/documents/"+path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (t *httpTransport) ListDocuments(ctx context.Context, path string) ([]wireDocument, error) {
	resp, err := t.do(ctx, http.MethodGet, t.baseURL+"/documents/"+path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body struct {
		Documents []wireDocument `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
	}
	return body.Documents, nil
}

func (t *httpTransport) Commit(ctx context.Context, writes []wireWrite) ([]wireWriteResult, error) {
	resp, err := t.do(ctx, http.MethodPost, t.baseURL+"/batchWrite", map[string]interface{}{
		"writes": writes,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body struct {
		WriteResults []wireWriteResult `json:"writeResults"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
	}
	return body.WriteResults, nil
}

// listenEnvelope is the server frame on the listen socket.
type listenEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// listenPingInterval is how often an open listen socket sends a keepalive
// frame. The server closes connections that stay silent past its read
// deadline, so this must be shorter than that. Var so tests can shorten it.
var listenPingInterval = 30 * time.Second

func (t *httpTransport) Listen(ctx context.Context, path string) (<-chan listenEvent, error) {
	u, err := url.Parse(t.wsURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	headers := http.Header{}
	if t.authToken != "" {
		headers.Set("Authorization", "Bearer "+t.authToken)
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	conn, _, err := dialer.Dial(u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "path": path}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	t.logf("listen %s", path)

	events := make(chan listenEvent, 16)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		ticker := time.NewTicker(listenPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
					return
				}
			}
		}
	}()
	go func() {
		defer close(events)
		defer conn.Close()

		for {
			var envelope listenEnvelope
			if err := conn.ReadJSON(&envelope); err != nil {
				if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					t.logf("listen %s closed: %v", path, err)
				}
				return
			}
			if envelope.Type != "document_change" {
				continue
			}

			var event listenEvent
			if err := json.Unmarshal(envelope.Data, &event); err != nil {
				t.logf("listen %s: malformed event: %v", path, err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (t *httpTransport) Close() error {
	t.hc.CloseIdleConnections()
	return nil
}
