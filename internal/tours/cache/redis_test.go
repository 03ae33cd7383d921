package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSceneCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewSceneCache(client)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "p1", "root.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	scenes := map[string]domain.SceneDescriptor{
		"root": {ID: "root", PanoramaSource: "root.jpg", NavigablePoints: []domain.NavigablePoint{}, Markers: []domain.Marker{}},
	}
	require.NoError(t, c.Set(ctx, "p1", "root.jpg", scenes))
	require.NoError(t, c.Set(ctx, "p1", "alt.jpg", scenes))
	assert.True(t, mr.Exists("ambi360:scenes:p1"))
	assert.Equal(t, time.Hour, mr.TTL("ambi360:scenes:p1"))

	got, ok, err := c.Get(ctx, "p1", "root.jpg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scenes, got)

	require.NoError(t, c.Invalidate(ctx, "p1"))
	_, ok, err = c.Get(ctx, "p1", "alt.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSceneCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewSceneCache(client)

	mr.HSet("ambi360:scenes:p1", "root.jpg", "{not json")
	_, _, err := c.Get(context.Background(), "p1", "root.jpg")
	assert.Error(t, err)
}

func TestUnlockEvents_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	events := NewUnlockEvents(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := events.Subscribe(ctx, "p1")
	require.NoError(t, err)

	ev := domain.UnlockEvent{ProjectID: "p1", HotspotID: "h1", SessionID: "session-123456", UnlockedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, events.PublishUnlock(context.Background(), ev))
	require.NoError(t, events.PublishUnlock(context.Background(), domain.UnlockEvent{ProjectID: "p2", HotspotID: "other"}))

	select {
	case got := <-ch:
		assert.Equal(t, ev.HotspotID, got.HotspotID)
		assert.Equal(t, ev.SessionID, got.SessionID)
		assert.True(t, ev.UnlockedAt.Equal(got.UnlockedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no unlock event received")
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}
