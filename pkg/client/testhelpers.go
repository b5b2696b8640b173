package client

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// fakeTransport is an in-memory backend for tests. It mirrors the real
// backend's semantics: sentinel resolution at a single commit time, no-op
// deletes of missing documents, exists=false reads, and listen fan-out.
type fakeTransport struct {
	mu        sync.Mutex
	docs      map[string]*fakeDoc
	listeners map[string][]chan listenEvent

	// failWith, when set, makes every operation fail with it.
	failWith error

	now func() time.Time
}

type fakeDoc struct {
	fields     map[string]interface{}
	createTime time.Time
	updateTime time.Time
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		docs:      make(map[string]*fakeDoc),
		listeners: make(map[string][]chan listenEvent),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// copyFields deep-copies a wire mapping via JSON, matching the decoding the
// real transport would apply.
func copyFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	encoded, _ := json.Marshal(fields)
	var out map[string]interface{}
	_ = json.Unmarshal(encoded, &out)
	return out
}

// resolveSentinels replaces server-timestamp sentinels at any depth with the
// commit time.
func resolveSentinels(value interface{}, commitTime time.Time) interface{} {
	valueMap, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if _, isSentinel := valueMap[wireServerTimestamp]; isSentinel {
		return map[string]interface{}{wireTimestamp: commitTime.Format(time.RFC3339Nano)}
	}
	if inner, ok := valueMap[wireArray].(map[string]interface{}); ok {
		if values, ok := inner["values"].([]interface{}); ok {
			for i, v := range values {
				values[i] = resolveSentinels(v, commitTime)
			}
		}
		return valueMap
	}
	if inner, ok := valueMap[wireMap].(map[string]interface{}); ok {
		if fields, ok := inner["fields"].(map[string]interface{}); ok {
			for k, v := range fields {
				fields[k] = resolveSentinels(v, commitTime)
			}
		}
		return valueMap
	}
	return valueMap
}

func (t *fakeTransport) setLocked(path string, fields map[string]interface{}, commitTime time.Time) *wireDocument {
	stored := copyFields(fields)
	for k, v := range stored {
		stored[k] = resolveSentinels(v, commitTime)
	}

	doc, existed := t.docs[path]
	if !existed {
		doc = &fakeDoc{createTime: commitTime}
		t.docs[path] = doc
	}
	doc.fields = stored
	doc.updateTime = commitTime

	eventType := "MODIFIED"
	if !existed {
		eventType = "ADDED"
	}
	t.notifyLocked(listenEvent{Type: eventType, Path: path, Fields: copyFields(stored), CommitTime: commitTime})

	return &wireDocument{
		Path:       path,
		Fields:     copyFields(stored),
		CreateTime: doc.createTime,
		UpdateTime: doc.updateTime,
		Exists:     true,
	}
}

func (t *fakeTransport) notifyLocked(event listenEvent) {
	for _, ch := range t.listeners[event.Path] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (t *fakeTransport) SetDocument(ctx context.Context, path string, fields map[string]interface{}) (*wireDocument, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}
	return t.setLocked(path, fields, t.now()), nil
}

func (t *fakeTransport) GetDocument(ctx context.Context, path string) (*wireDocument, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}

	doc, ok := t.docs[path]
	if !ok {
		return &wireDocument{Path: path, Exists: false}, nil
	}
	return &wireDocument{
		Path:       path,
		Fields:     copyFields(doc.fields),
		CreateTime: doc.createTime,
		UpdateTime: doc.updateTime,
		Exists:     true,
	}, nil
}

func (t *fakeTransport) ListDocuments(ctx context.Context, path string) ([]wireDocument, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}

	prefix := path + "/"
	var docs []wireDocument
	for docPath, doc := range t.docs {
		if !strings.HasPrefix(docPath, prefix) {
			continue
		}
		// Only direct children: subcollection documents have further
		// segments past the prefix.
		if strings.Contains(docPath[len(prefix):], "/") {
			continue
		}
		docs = append(docs, wireDocument{
			Path:       docPath,
			Fields:     copyFields(doc.fields),
			CreateTime: doc.createTime,
			UpdateTime: doc.updateTime,
			Exists:     true,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (t *fakeTransport) DeleteDocument(ctx context.Context, path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return t.failWith
	}

	if _, existed := t.docs[path]; existed {
		delete(t.docs, path)
		t.notifyLocked(listenEvent{Type: "REMOVED", Path: path, CommitTime: t.now()})
	}
	return nil
}

func (t *fakeTransport) Commit(ctx context.Context, writes []wireWrite) ([]wireWriteResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}

	commitTime := t.now()
	results := make([]wireWriteResult, 0, len(writes))
	for _, w := range writes {
		switch w.Type {
		case writeTypeSet:
			t.setLocked(w.Path, w.Fields, commitTime)
		case writeTypeDelete:
			if _, existed := t.docs[w.Path]; existed {
				delete(t.docs, w.Path)
				t.notifyLocked(listenEvent{Type: "REMOVED", Path: w.Path, CommitTime: commitTime})
			}
		}
		results = append(results, wireWriteResult{Path: w.Path, UpdateTime: commitTime})
	}
	return results, nil
}

func (t *fakeTransport) Listen(ctx context.Context, path string) (<-chan listenEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return nil, t.failWith
	}

	ch := make(chan listenEvent, 16)
	t.listeners[path] = append(t.listeners[path], ch)

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		defer t.mu.Unlock()
		remaining := t.listeners[path][:0]
		for _, c := range t.listeners[path] {
			if c != ch {
				remaining = append(remaining, c)
			}
		}
		t.listeners[path] = remaining
		close(ch)
	}()
	return ch, nil
}

func (t *fakeTransport) Close() error { return nil }

// newTestClient wires a client to a fresh fake transport.
func newTestClient() (*Client, *fakeTransport) {
	fake := newFakeTransport()
	return newWithTransport("test-project", "default", fake), fake
}
