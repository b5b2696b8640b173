package client

import (
	"context"
	"errors"
	"time"
)

// WriteResult reports one applied write of a committed batch.
type WriteResult struct {
	Path       string
	UpdateTime time.Time
}

// WriteBatch accumulates writes applied in one commit. The backend applies
// them in order; every ServerTimestamp sentinel in the batch resolves to the
// same commit time.
type WriteBatch struct {
	c      *Client
	writes []wireWrite
	err    error
}

// Set queues a full-document write.
func (b *WriteBatch) Set(ref *DocumentRef, data map[string]interface{}) *WriteBatch {
	if b.err != nil {
		return b
	}
	if ref.err != nil {
		b.err = ref.err
		return b
	}
	fields, err := encodeFields(data)
	if err != nil {
		b.err = err
		return b
	}
	b.writes = append(b.writes, wireWrite{Type: writeTypeSet, Path: ref.Path, Fields: fields})
	return b
}

// Delete queues a document removal.
func (b *WriteBatch) Delete(ref *DocumentRef) *WriteBatch {
	if b.err != nil {
		return b
	}
	if ref.err != nil {
		b.err = ref.err
		return b
	}
	b.writes = append(b.writes, wireWrite{Type: writeTypeDelete, Path: ref.Path})
	return b
}

// Commit sends the queued writes in a single request. An empty batch is an
// error. The batch must not be reused after Commit.
func (b *WriteBatch) Commit(ctx context.Context) ([]WriteResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.writes) == 0 {
		return nil, errors.New("docstore: cannot commit an empty batch")
	}

	b.c.logf("commit batch (%d writes)", len(b.writes))
	wireResults, err := b.c.transport.Commit(ctx, b.writes)
	if err != nil {
		b.c.logf("commit failed: %v", err)
		return nil, err
	}

	results := make([]WriteResult, len(wireResults))
	for i, wr := range wireResults {
		results[i] = WriteResult{Path: wr.Path, UpdateTime: wr.UpdateTime}
	}
	return results, nil
}
