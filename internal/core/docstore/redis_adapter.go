package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 8

// RedisStore implements Store and Broadcaster using Redis.
// Updates use WATCH/MULTI/EXEC so a write only lands if the key is unchanged since it was read.
type RedisStore struct {
	client     *redis.Client
	maxRetries int
}

// NewRedisStore creates a new Redis document store.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisStore{
		client:     redis.NewClient(opts),
		maxRetries: defaultMaxRetries,
	}, nil
}

// WithMaxRetries overrides how many optimistic attempts Update makes.
func (r *RedisStore) WithMaxRetries(n int) *RedisStore {
	if n > 0 {
		r.maxRetries = n
	}
	return r
}

// Get retrieves a document from Redis by key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Create stores a document only if the key does not exist yet.
func (r *RedisStore) Create(ctx context.Context, key string, value []byte) error {
	ok, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create key %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	return nil
}

// Update applies fn to the current document under WATCH and commits it in a
// MULTI block. Losing the race restarts from a fresh read.
func (r *RedisStore) Update(ctx context.Context, key string, fn MutateFunc) ([]byte, error) {
	var written []byte

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return fmt.Errorf("failed to get key %s: %w", key, err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		if err != nil {
			return err
		}

		written = next
		return nil
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return written, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrConflict, key)
}

// AddToIndex adds member to the Redis set named index.
func (r *RedisStore) AddToIndex(ctx context.Context, index, member string) error {
	if err := r.client.SAdd(ctx, index, member).Err(); err != nil {
		return fmt.Errorf("failed to index %s in %s: %w", member, index, err)
	}
	return nil
}

// IndexMembers returns every member of the Redis set named index.
func (r *RedisStore) IndexMembers(ctx context.Context, index string) ([]string, error) {
	members, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", index, err)
	}
	return members, nil
}

// Publish sends payload to every subscriber of channel.
func (r *RedisStore) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
