package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suleman231/provisimarket-hub/pkg/database"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// SnapshotStore implements repository.SnapshotStore on Redis strings.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a Redis-backed store. A zero ttl keeps keys
// forever.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Load reads the blob at key.
func (s *SnapshotStore) Load(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "LoadSnapshot", "GET "+key)
	defer func() { end(err) }()

	data, err = s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("snapshot", key)
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return data, nil
}

// Save overwrites the blob at key.
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "SaveSnapshot", "SET "+key)
	defer func() { end(err) }()

	if err = s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}
