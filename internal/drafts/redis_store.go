package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const (
	draftKeyPrefix = "ambi360:drafts:"      // String per draft: ambi360:drafts:{draft_id}
	draftIndexKey  = "ambi360:drafts:index" // Set of draft ids, pruned lazily on List
)

// RedisStore keeps each draft as a JSON string with a TTL refreshed on save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Draft, error) {
	data, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("draft %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, draftKey(d.ID), data, s.ttl)
	pipe.SAdd(ctx, draftIndexKey, d.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, draftKey(id))
	pipe.SRem(ctx, draftIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("draft %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns live drafts, most recently updated first. Index entries of
// expired drafts are removed.
func (s *RedisStore) List(ctx context.Context) ([]Draft, error) {
	ids, err := s.client.SMembers(ctx, draftIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	if len(ids) == 0 {
		return []Draft{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = draftKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}

	out := make([]Draft, 0, len(ids))
	var expired []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var d Draft
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("draft_id", ids[i]).Msg("skip malformed draft")
			continue
		}
		out = append(out, d)
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, draftIndexKey, expired...).Err(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("prune draft index")
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
