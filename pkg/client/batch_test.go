package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommitAppliesWritesInOrder(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	doc := c.Collection("cities").Doc("MTV")
	defer doc.Delete(ctx)

	results, err := c.Batch().
		Set(doc, map[string]interface{}{"population": int64(1)}).
		Set(doc, map[string]interface{}{"population": int64(2)}).
		Commit(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cities/MTV", results[0].Path)

	snap, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Data()["population"])
}

func TestBatchSetAndDelete(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	keep := c.Collection("cities").Doc("MTV")
	gone := c.Collection("cities").Doc("SF")
	defer keep.Delete(ctx)

	require.NoError(t, gone.Set(ctx, map[string]interface{}{"name": "San Francisco"}))

	_, err := c.Batch().
		Set(keep, map[string]interface{}{"name": "Mountain View"}).
		Delete(gone).
		Commit(ctx)
	require.NoError(t, err)

	snap, err := keep.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists)

	snap, err = gone.Get(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func TestBatchSharesOneCommitTime(t *testing.T) {
	c, fake := newTestClient()
	ctx := context.Background()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fake.now = func() time.Time { return fixed }

	a := c.Collection("cities").Doc("A")
	b := c.Collection("cities").Doc("B")
	defer a.Delete(ctx)
	defer b.Delete(ctx)

	results, err := c.Batch().
		Set(a, map[string]interface{}{"at": ServerTimestamp}).
		Set(b, map[string]interface{}{"at": ServerTimestamp}).
		Commit(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].UpdateTime, results[1].UpdateTime)

	snapA, err := a.Get(ctx)
	require.NoError(t, err)
	snapB, err := b.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixed, snapA.Data()["at"])
	assert.Equal(t, snapA.Data()["at"], snapB.Data()["at"])
}

func TestBatchCommitEmptyFails(t *testing.T) {
	c, _ := newTestClient()
	_, err := c.Batch().Commit(context.Background())
	assert.Error(t, err)
}

func TestBatchRejectsInvalidRefs(t *testing.T) {
	c, _ := newTestClient()

	bad := c.Collection("cities").Doc("not/valid")
	_, err := c.Batch().
		Set(bad, map[string]interface{}{"a": int64(1)}).
		Commit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = c.Batch().Delete(bad).Commit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPath)
}
