package client

import (
	"context"
	"time"
)

// wireDocument is the backend's document representation.
type wireDocument struct {
	Path       string                 `json:"path"`
	Fields     map[string]interface{} `json:"fields"`
	CreateTime time.Time              `json:"createTime"`
	UpdateTime time.Time              `json:"updateTime"`
	Exists     bool                   `json:"exists"`
}

// wireWrite is one operation in a commit request.
type wireWrite struct {
	Type   string                 `json:"type"`
	Path   string                 `json:"path"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

const (
	writeTypeSet    = "set"
	writeTypeDelete = "delete"
)

// wireWriteResult reports one applied write.
type wireWriteResult struct {
	Path       string    `json:"path"`
	UpdateTime time.Time `json:"updateTime"`
}

// listenEvent is one document change pushed over the listen channel.
type listenEvent struct {
	Type       string                 `json:"type"`
	Path       string                 `json:"path"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	CommitTime time.Time              `json:"commitTime"`
}

// transport is the opaque channel to the document-store backend. The SDK
// ships an HTTP implementation; tests use an in-memory fake.
type transport interface {
	// SetDocument upserts the document at path and returns its new state.
	SetDocument(ctx context.Context, path string, fields map[string]interface{}) (*wireDocument, error)

	// GetDocument reads the document at path. A missing document is not an
	// error; the result reports Exists == false.
	GetDocument(ctx context.Context, path string) (*wireDocument, error)

	// DeleteDocument removes the document at path. Deleting a missing
	// document succeeds.
	DeleteDocument(ctx context.Context, path string) error

	// ListDocuments reads the documents directly under the collection at
	// path, ordered by path.
	ListDocuments(ctx context.Context, path string) ([]wireDocument, error)

	// Commit applies writes in order with a single commit time.
	Commit(ctx context.Context, writes []wireWrite) ([]wireWriteResult, error)

	// Listen streams committed changes for the document at path until ctx
	// is cancelled.
	Listen(ctx context.Context, path string) (<-chan listenEvent, error)

	// Close releases transport resources.
	Close() error
}
