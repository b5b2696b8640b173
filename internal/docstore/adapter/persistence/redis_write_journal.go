package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"docstore/internal/docstore/domain/model"
	"docstore/internal/shared/eventbus"
)

// RedisWriteJournal appends committed document changes to Redis Streams, one
// stream per document path. It gives listeners a durable catch-up source that
// outlives the in-process event bus.
type RedisWriteJournal struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisWriteJournal creates a Redis-backed write journal.
func NewRedisWriteJournal(client *redis.Client, log *zap.Logger) *RedisWriteJournal {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisWriteJournal{client: client, logger: log}
}

func streamName(projectID, databaseID, path string) string {
	return fmt.Sprintf("docstore:events:%s:%s:%s", projectID, databaseID, path)
}

// Append stores a write event in the document's stream.
func (j *RedisWriteJournal) Append(ctx context.Context, event model.WriteEvent) error {
	fieldsJSON, err := json.Marshal(model.FieldsToWire(event.Fields))
	if err != nil {
		j.logger.Error("Failed to serialize event fields", zap.Error(err))
		return err
	}

	stream := streamName(event.ProjectID, event.DatabaseID, event.Path)
	_, err = j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"type":       string(event.Type),
			"path":       event.Path,
			"projectId":  event.ProjectID,
			"databaseId": event.DatabaseID,
			"fields":     fieldsJSON,
			"commitTime": event.CommitTime.UnixNano(),
			"version":    event.Version,
		},
	}).Result()
	if err != nil {
		j.logger.Error("Failed to append write event",
			zap.String("stream", stream),
			zap.String("eventType", string(event.Type)),
			zap.Error(err))
		return err
	}

	j.logger.Debug("Write event journaled",
		zap.String("stream", stream),
		zap.String("eventType", string(event.Type)),
		zap.Int64("version", event.Version))
	return nil
}

// EventsSince reads journaled events for a document path after the given
// stream ID ("0" for the whole history).
func (j *RedisWriteJournal) EventsSince(ctx context.Context, projectID, databaseID, path, lastID string) ([]model.WriteEvent, error) {
	stream := streamName(projectID, databaseID, path)
	if lastID == "" {
		lastID = "0"
	}

	exists, err := j.client.Exists(ctx, stream).Result()
	if err != nil {
		j.logger.Error("Failed to check stream existence", zap.String("stream", stream), zap.Error(err))
		return nil, err
	}
	if exists == 0 {
		return []model.WriteEvent{}, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := j.client.XRead(readCtx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   1000,
		Block:   -1,
	}).Result()
	if err != nil {
		if err == redis.Nil || err == context.DeadlineExceeded {
			return []model.WriteEvent{}, nil
		}
		j.logger.Error("Failed to read journal", zap.String("stream", stream), zap.Error(err))
		return nil, err
	}

	var events []model.WriteEvent
	for _, s := range res {
		for _, msg := range s.Messages {
			event, err := decodeJournalMessage(msg)
			if err != nil {
				j.logger.Warn("Skipping malformed journal entry",
					zap.String("stream", stream),
					zap.String("id", msg.ID),
					zap.Error(err))
				continue
			}
			events = append(events, event)
		}
	}
	return events, nil
}

func decodeJournalMessage(msg redis.XMessage) (model.WriteEvent, error) {
	event := model.WriteEvent{}

	get := func(key string) string {
		s, _ := msg.Values[key].(string)
		return s
	}

	event.Type = model.WriteEventType(get("type"))
	event.Path = get("path")
	event.ProjectID = get("projectId")
	event.DatabaseID = get("databaseId")

	if ns, err := strconv.ParseInt(get("commitTime"), 10, 64); err == nil {
		event.CommitTime = time.Unix(0, ns).UTC()
	}
	if v, err := strconv.ParseInt(get("version"), 10, 64); err == nil {
		event.Version = v
	}

	var wire map[string]interface{}
	if raw := get("fields"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return event, err
		}
		fields, err := model.FieldsFromWire(wire)
		if err != nil {
			return event, err
		}
		event.Fields = fields
	}

	return event, nil
}

// SubscribeToBus wires the journal to the document write topic so every
// committed change is journaled.
func (j *RedisWriteJournal) SubscribeToBus(bus *eventbus.Bus) {
	bus.Subscribe(model.EventTopicDocumentWrite, func(ctx context.Context, e eventbus.Event) error {
		event, ok := e.Data().(model.WriteEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", e.Data())
		}
		return j.Append(ctx, event)
	})
}
