package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document represents a stored document. Path is the collection-relative
// document path, e.g. "cities/SF" or "users/u1/posts/p1".
type Document struct {
	// MongoDB internal ID
	ID primitive.ObjectID `json:"-" bson:"_id,omitempty"`

	ProjectID  string `json:"projectId" bson:"project_id"`
	DatabaseID string `json:"databaseId" bson:"database_id"`

	CollectionID string `json:"collectionId" bson:"collection_id"`
	DocumentID   string `json:"documentId" bson:"document_id"`
	Path         string `json:"path" bson:"path"`
	ParentPath   string `json:"parentPath,omitempty" bson:"parent_path,omitempty"`

	Fields map[string]*FieldValue `json:"fields" bson:"-"`

	CreateTime time.Time `json:"createTime" bson:"create_time"`
	UpdateTime time.Time `json:"updateTime" bson:"update_time"`
	Version    int64     `json:"version" bson:"version"`

	// Exists reports whether the document was present at read time.
	Exists bool `json:"exists" bson:"-"`
}
