package persistence

import (
	"context"
	"errors"

	"github.com/patrolabs/patro/internal/sync/domain"
	"github.com/redis/go-redis/v9"
)

// mappingHashKey is the Redis hash holding the whole mapping store.
const mappingHashKey = "patro:sync_mappings"

// RedisMappingStore implements domain.MappingStore on a Redis hash.
// Requires a Redis instance with persistence enabled (AOF or RDB) for
// the mappings to survive restarts.
type RedisMappingStore struct {
	client *redis.Client
}

// NewRedisMappingStore creates a new Redis mapping store.
func NewRedisMappingStore(client *redis.Client) *RedisMappingStore {
	return &RedisMappingStore{client: client}
}

// Get returns the external ID stored under key.
func (s *RedisMappingStore) Get(ctx context.Context, key string) (string, error) {
	externalID, err := s.client.HGet(ctx, mappingHashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrMappingNotFound
	}
	if err != nil {
		return "", err
	}
	return externalID, nil
}

// Upsert stores the external ID under key.
func (s *RedisMappingStore) Upsert(ctx context.Context, key, externalID string) error {
	return s.client.HSet(ctx, mappingHashKey, key, externalID).Err()
}

// Delete removes the entry for key. Absent keys are a no-op.
func (s *RedisMappingStore) Delete(ctx context.Context, key string) error {
	return s.client.HDel(ctx, mappingHashKey, key).Err()
}

// All returns a snapshot of every stored entry.
func (s *RedisMappingStore) All(ctx context.Context) (map[string]string, error) {
	return s.client.HGetAll(ctx, mappingHashKey).Result()
}
