package contextkeys

import "context"

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "docstore context key " + string(c)
}

// RequestIDKey is the key for the per-request correlation ID in context.Context
const RequestIDKey = contextKey("requestID")

// ProjectIDKey is the key for the project identifier in context.Context
const ProjectIDKey = contextKey("projectID")

// DatabaseIDKey is the key for the database identifier in context.Context
const DatabaseIDKey = contextKey("databaseID")

// ComponentKey is the key for the originating component name in context.Context
const ComponentKey = contextKey("component")

// OperationKey is the key for the operation name in context.Context
const OperationKey = contextKey("operation")

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFrom extracts the request ID from the context, if present.
func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(RequestIDKey).(string)
	return v, ok && v != ""
}

// WithProjectID returns a context carrying the given project ID.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, ProjectIDKey, projectID)
}

// WithDatabaseID returns a context carrying the given database ID.
func WithDatabaseID(ctx context.Context, databaseID string) context.Context {
	return context.WithValue(ctx, DatabaseIDKey, databaseID)
}
