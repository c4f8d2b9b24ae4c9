package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/corpus"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "docqa:session:"
	DefaultTTL       = 30 * time.Minute
)

// RedisStore keeps each session's corpus as a JSON snapshot under its own key.
// Every Get and Put refreshes the TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*corpus.Corpus, error) {
	data, err := s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	return decodeSnapshot(data)
}

func (s *RedisStore) Put(ctx context.Context, id string, c *corpus.Corpus) error {
	data, err := encodeSnapshot(c)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func encodeSnapshot(c *corpus.Corpus) ([]byte, error) {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode corpus snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*corpus.Corpus, error) {
	var snapshot corpus.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode corpus snapshot: %w", err)
	}

	c, err := corpus.Restore(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore corpus snapshot: %w", err)
	}
	return c, nil
}
