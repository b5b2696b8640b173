package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/shared/docpath"
	"docstore/internal/shared/errors"
	"docstore/internal/shared/logger"
)

const documentsCollection = "documents"

// DocumentRepository persists documents in a single MongoDB collection keyed
// by (project_id, database_id, path).
type DocumentRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewDocumentRepository creates a MongoDB-backed document repository.
func NewDocumentRepository(db *mongo.Database, log logger.Logger) *DocumentRepository {
	return &DocumentRepository{
		collection: db.Collection(documentsCollection),
		logger:     log.WithComponent("mongodb-document-repository"),
	}
}

// EnsureIndexes creates the unique path index. Call once at startup.
func (r *DocumentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "project_id", Value: 1},
			{Key: "database_id", Value: 1},
			{Key: "path", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.NewInfrastructureError("failed to create document index").WithCause(err)
	}
	return nil
}

// mongoDocument is the stored document shape. Fields hold the typed wire
// structure with timestamps as native Mongo dates so they stay queryable.
type mongoDocument struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty"`
	ProjectID  string                 `bson:"project_id"`
	DatabaseID string                 `bson:"database_id"`
	Collection string                 `bson:"collection_id"`
	DocumentID string                 `bson:"document_id"`
	Path       string                 `bson:"path"`
	ParentPath string                 `bson:"parent_path"`
	Fields     map[string]interface{} `bson:"fields"`
	CreateTime time.Time              `bson:"create_time"`
	UpdateTime time.Time              `bson:"update_time"`
	Version    int64                  `bson:"version"`
}

func pathFilter(projectID, databaseID, path string) bson.M {
	return bson.M{
		"project_id":  projectID,
		"database_id": databaseID,
		"path":        path,
	}
}

// SetDocument upserts a document body and bumps its version.
func (r *DocumentRepository) SetDocument(ctx context.Context, projectID, databaseID, path string, fields map[string]*model.FieldValue, commitTime time.Time) (*model.Document, bool, error) {
	docID, err := docpath.DocumentID(path)
	if err != nil {
		return nil, false, err
	}
	colID, err := docpath.CollectionID(path)
	if err != nil {
		return nil, false, err
	}
	parentPath, err := docpath.Parent(path)
	if err != nil {
		return nil, false, err
	}

	update := bson.M{
		"$set": bson.M{
			"collection_id": colID,
			"document_id":   docID,
			"parent_path":   parentPath,
			"fields":        flattenFields(fields),
			"update_time":   commitTime,
		},
		"$setOnInsert": bson.M{
			"create_time": commitTime,
		},
		"$inc": bson.M{"version": int64(1)},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored mongoDocument
	if err := r.collection.FindOneAndUpdate(ctx, pathFilter(projectID, databaseID, path), update, opts).Decode(&stored); err != nil {
		r.logger.WithFields(map[string]interface{}{"path": path, "error": err}).Error("Mongo upsert failed")
		return nil, false, errors.NewInfrastructureError("failed to upsert document").WithCause(err)
	}

	return r.toModel(&stored), stored.Version == 1, nil
}

// GetDocument reads a document; missing documents yield ErrDocumentNotFound.
func (r *DocumentRepository) GetDocument(ctx context.Context, projectID, databaseID, path string) (*model.Document, error) {
	var stored mongoDocument
	err := r.collection.FindOne(ctx, pathFilter(projectID, databaseID, path)).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NewDocumentNotFoundError(path)
	}
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"path": path, "error": err}).Error("Mongo read failed")
		return nil, errors.NewInfrastructureError("failed to read document").WithCause(err)
	}

	return r.toModel(&stored), nil
}

// DeleteDocument removes a document and reports whether it existed.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, projectID, databaseID, path string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, pathFilter(projectID, databaseID, path))
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"path": path, "error": err}).Error("Mongo delete failed")
		return false, errors.NewInfrastructureError("failed to delete document").WithCause(err)
	}
	return res.DeletedCount > 0, nil
}

// ListDocuments returns the documents directly under a collection path.
func (r *DocumentRepository) ListDocuments(ctx context.Context, projectID, databaseID, collectionPath string, pageSize int32, orderBy string) ([]*model.Document, error) {
	filter := bson.M{
		"project_id":  projectID,
		"database_id": databaseID,
		"parent_path": collectionPath,
	}

	sortField := "path"
	switch orderBy {
	case "", "path":
	case "updateTime":
		sortField = "update_time"
	case "createTime":
		sortField = "create_time"
	default:
		return nil, errors.NewValidationError("unsupported orderBy").WithDetail("orderBy", orderBy)
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: 1}})
	if pageSize > 0 {
		opts.SetLimit(int64(pageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.NewInfrastructureError("failed to list documents").WithCause(err)
	}
	defer cursor.Close(ctx)

	var out []*model.Document
	for cursor.Next(ctx) {
		var stored mongoDocument
		if err := cursor.Decode(&stored); err != nil {
			return nil, errors.NewInfrastructureError("failed to decode document").WithCause(err)
		}
		out = append(out, r.toModel(&stored))
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.NewInfrastructureError("cursor failed").WithCause(err)
	}
	return out, nil
}

func (r *DocumentRepository) toModel(stored *mongoDocument) *model.Document {
	return &model.Document{
		ID:           stored.ID,
		ProjectID:    stored.ProjectID,
		DatabaseID:   stored.DatabaseID,
		CollectionID: stored.Collection,
		DocumentID:   stored.DocumentID,
		Path:         stored.Path,
		ParentPath:   stored.ParentPath,
		Fields:       expandFields(stored.Fields),
		CreateTime:   stored.CreateTime.UTC(),
		UpdateTime:   stored.UpdateTime.UTC(),
		Version:      stored.Version,
		Exists:       true,
	}
}
