package model

import "time"

// WriteType defines the kind of a single write in a commit.
type WriteType string

const (
	WriteTypeSet    WriteType = "set"
	WriteTypeDelete WriteType = "delete"
)

// Write represents a single operation in a commit request. Path is the
// collection-relative document path.
type Write struct {
	Type   WriteType              `json:"type"`
	Path   string                 `json:"path"`
	Fields map[string]*FieldValue `json:"fields,omitempty"`
}

// WriteResult reports the outcome of one applied write.
type WriteResult struct {
	Path       string    `json:"path"`
	UpdateTime time.Time `json:"updateTime"`
}

// WriteEventType classifies a committed change for listeners.
type WriteEventType string

const (
	EventAdded    WriteEventType = "ADDED"
	EventModified WriteEventType = "MODIFIED"
	EventRemoved  WriteEventType = "REMOVED"
)

// EventTopicDocumentWrite is the bus topic all document write events use.
const EventTopicDocumentWrite = "document.write"

// WriteEvent describes a committed document change. Fields is nil for
// removals.
type WriteEvent struct {
	Type       WriteEventType         `json:"type"`
	ProjectID  string                 `json:"projectId"`
	DatabaseID string                 `json:"databaseId"`
	Path       string                 `json:"path"`
	Fields     map[string]*FieldValue `json:"fields,omitempty"`
	CommitTime time.Time              `json:"commitTime"`
	Version    int64                  `json:"version"`
}
