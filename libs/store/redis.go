package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisHistory keeps each session's turns in a Redis list under
// "history:<session_id>". The key TTL is refreshed on every write and read,
// so retention is a store-level concern, not pipeline logic.
type redisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis builds a Redis-backed History. A non-positive ttl defaults to 24h.
func NewRedis(client *redis.Client, ttl time.Duration) History {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisHistory{client: client, ttl: ttl}
}

func historyKey(sessionID string) string { return "history:" + sessionID }

func (r *redisHistory) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	vals := make([]any, 0, len(turns))
	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		vals = append(vals, string(b))
	}
	key := historyKey(sessionID)
	if err := r.client.RPush(ctx, key, vals...).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, r.ttl).Err()
}

func (r *redisHistory) Read(ctx context.Context, sessionID string) ([]Turn, error) {
	key := historyKey(sessionID)
	vals, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(vals))
	for _, v := range vals {
		var t Turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	_ = r.client.Expire(ctx, key, r.ttl).Err()
	return turns, nil
}

func (r *redisHistory) Close() error {
	return r.client.Close()
}
