// Package cache keeps derived tour data in redis: built scene graphs and the
// unlock event stream.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const (
	sceneKeyPrefix      = "ambi360:scenes:"  // Hash per project: ambi360:scenes:{project_id}, field = root image
	unlockChannelPrefix = "ambi360:unlocks:" // Pub/Sub channel per project: ambi360:unlocks:{project_id}
	sceneTTL            = time.Hour
)

// SceneCache stores built scene graphs. All root images of a project live in
// one hash so a single DEL invalidates the project.
type SceneCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSceneCache(client *redis.Client) *SceneCache {
	return &SceneCache{client: client, ttl: sceneTTL}
}

func sceneKey(projectID string) string {
	return sceneKeyPrefix + projectID
}

func (c *SceneCache) Get(ctx context.Context, projectID, rootImage string) (map[string]domain.SceneDescriptor, bool, error) {
	data, err := c.client.HGet(ctx, sceneKey(projectID), rootImage).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get scenes: %w", err)
	}

	var scenes map[string]domain.SceneDescriptor
	if err := json.Unmarshal([]byte(data), &scenes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal scenes: %w", err)
	}
	return scenes, true, nil
}

func (c *SceneCache) Set(ctx context.Context, projectID, rootImage string, scenes map[string]domain.SceneDescriptor) error {
	data, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("failed to marshal scenes: %w", err)
	}

	key := sceneKey(projectID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, rootImage, data)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache scenes: %w", err)
	}
	return nil
}

func (c *SceneCache) Invalidate(ctx context.Context, projectID string) error {
	if err := c.client.Del(ctx, sceneKey(projectID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate scenes: %w", err)
	}
	return nil
}

// UnlockEvents publishes first-time unlocks per project and lets viewers
// follow them.
type UnlockEvents struct {
	client *redis.Client
}

func NewUnlockEvents(client *redis.Client) *UnlockEvents {
	return &UnlockEvents{client: client}
}

func unlockChannel(projectID string) string {
	return unlockChannelPrefix + projectID
}

func (e *UnlockEvents) PublishUnlock(ctx context.Context, ev domain.UnlockEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock event: %w", err)
	}
	if err := e.client.Publish(ctx, unlockChannel(ev.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish unlock event: %w", err)
	}
	return nil
}

// Subscribe streams the unlock events of a project until ctx is done. The
// subscription is confirmed before Subscribe returns.
func (e *UnlockEvents) Subscribe(ctx context.Context, projectID string) (<-chan domain.UnlockEvent, error) {
	sub := e.client.Subscribe(ctx, unlockChannel(projectID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.UnlockEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.UnlockEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logging.Warn().Err(err).Str("channel", msg.Channel).Msg("drop malformed unlock event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
