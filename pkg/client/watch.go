package client

import (
	"context"
	"time"
)

// WatchEventType classifies a document change.
type WatchEventType string

const (
	WatchAdded    WatchEventType = "ADDED"
	WatchModified WatchEventType = "MODIFIED"
	WatchRemoved  WatchEventType = "REMOVED"
)

// WatchEvent is one committed change to a watched document. Data is nil for
// removals.
type WatchEvent struct {
	Type       WatchEventType
	Ref        *DocumentRef
	Data       map[string]interface{}
	CommitTime time.Time
}

// Watch streams committed changes to this document until ctx is cancelled.
// The returned channel closes when the stream ends. Events for slow
// consumers may be dropped by the backend.
func (r *DocumentRef) Watch(ctx context.Context) (<-chan WatchEvent, error) {
	if r.err != nil {
		return nil, r.err
	}

	raw, err := r.c.transport.Listen(ctx, r.Path)
	if err != nil {
		return nil, err
	}

	events := make(chan WatchEvent, 16)
	go func() {
		defer close(events)
		for le := range raw {
			event := WatchEvent{
				Type:       WatchEventType(le.Type),
				Ref:        r.c.Doc(le.Path),
				CommitTime: le.CommitTime,
			}
			if le.Fields != nil {
				data, err := decodeFields(r.c, le.Fields)
				if err != nil {
					r.c.logf("watch %s: undecodable event: %v", r.Path, err)
					continue
				}
				event.Data = data
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
