// Package client is a document-store SDK: collection/document navigation,
// typed converters, server-timestamp sentinels, snapshots, write batches and
// realtime watches over a remote document database.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"docstore/internal/shared/docpath"
)

// LogFunc receives one internal SDK log line per call. It must tolerate
// concurrent invocation and must not be used as an error channel.
type LogFunc func(msg string)

// Config configures a Client.
type Config struct {
	// ProjectID and DatabaseID select the target database. DatabaseID
	// defaults to "default".
	ProjectID  string
	DatabaseID string

	// Endpoint is the backend base URL, e.g. "http://localhost:8080".
	Endpoint string

	// AuthToken, when set, is sent as a Bearer token on every request.
	AuthToken string

	// HTTPClient overrides the transport's HTTP client. Timeout and retry
	// policy live there, not in the SDK.
	HTTPClient *http.Client
}

// Client is the entry point to the document store. A Client is safe for
// concurrent use.
type Client struct {
	projectID  string
	databaseID string

	transport transport
	logFn     atomic.Pointer[LogFunc]
}

// New creates a Client for the given backend.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("docstore: ProjectID is required")
	}
	if cfg.DatabaseID == "" {
		cfg.DatabaseID = "default"
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("docstore: Endpoint is required")
	}

	c := &Client{
		projectID:  cfg.ProjectID,
		databaseID: cfg.DatabaseID,
	}
	c.transport = newHTTPTransport(cfg, c.logf)
	return c, nil
}

// newWithTransport wires a custom transport. Tests use it with an in-memory
// fake.
func newWithTransport(projectID, databaseID string, t transport) *Client {
	return &Client{projectID: projectID, databaseID: databaseID, transport: t}
}

// Collection returns a handle for the top-level collection with the given ID.
func (c *Client) Collection(id string) *CollectionRef {
	if !docpath.IsValidID(id) {
		return &CollectionRef{c: c, err: newInvalidPathError(id)}
	}
	return &CollectionRef{c: c, Path: id, ID: id}
}

// Doc returns a handle for the document at the given slash-separated path.
func (c *Client) Doc(path string) *DocumentRef {
	if err := docpath.ValidateDocumentPath(path); err != nil {
		return &DocumentRef{c: c, Path: path, err: newInvalidPathError(path)}
	}
	id, _ := docpath.DocumentID(path)
	return &DocumentRef{c: c, Path: path, ID: id}
}

// Batch returns an empty write batch.
func (c *Client) Batch() *WriteBatch {
	return &WriteBatch{c: c}
}

// SetLogFunction installs the log hook invoked for internal SDK activity.
// It replaces any prior hook; nil disables logging.
func (c *Client) SetLogFunction(fn LogFunc) {
	if fn == nil {
		c.logFn.Store(nil)
		return
	}
	c.logFn.Store(&fn)
}

// logf emits one log line through the installed hook, if any.
func (c *Client) logf(format string, args ...interface{}) {
	fn := c.logFn.Load()
	if fn == nil {
		return
	}
	(*fn)(fmt.Sprintf(format, args...))
}

// Close releases the client's transport resources.
func (c *Client) Close() error {
	return c.transport.Close()
}
