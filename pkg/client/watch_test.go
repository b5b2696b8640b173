package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events <-chan WatchEvent) WatchEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "watch channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return WatchEvent{}
	}
}

func TestWatchStreamsDocumentChanges(t *testing.T) {
	c, _ := newTestClient()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doc := c.Collection("cities").Doc("MTV")
	events, err := doc.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, doc.Set(ctx, map[string]interface{}{"name": "Mountain View"}))
	ev := nextEvent(t, events)
	assert.Equal(t, WatchAdded, ev.Type)
	assert.Equal(t, doc.Path, ev.Ref.Path)
	assert.Equal(t, "Mountain View", ev.Data["name"])

	require.NoError(t, doc.Set(ctx, map[string]interface{}{"name": "Mountain View", "population": int64(77846)}))
	ev = nextEvent(t, events)
	assert.Equal(t, WatchModified, ev.Type)
	assert.Equal(t, int64(77846), ev.Data["population"])

	require.NoError(t, doc.Delete(ctx))
	ev = nextEvent(t, events)
	assert.Equal(t, WatchRemoved, ev.Type)
	assert.Nil(t, ev.Data)
}

func TestWatchStopsOnCancel(t *testing.T) {
	c, _ := newTestClient()
	ctx, cancel := context.WithCancel(context.Background())

	doc := c.Collection("cities").Doc("MTV")
	events, err := doc.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel did not close after cancel")
	}
}

func TestWatchInvalidPath(t *testing.T) {
	c, _ := newTestClient()

	_, err := c.Collection("cities").Doc("bad/id").Watch(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPath)
}
