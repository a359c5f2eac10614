package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists harness session data: every cmi key written by a running
// package, bucketed per session id.
type Store interface {
	Set(ctx context.Context, session, key, value string) error
	Get(ctx context.Context, session, key string) (string, error)
	Snapshot(ctx context.Context, session string) (map[string]string, error)
	Clear(ctx context.Context, session string) error
}

// memoryStore keeps sessions in process memory. The default when no Redis
// URL is configured.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]map[string]string)}
}

func (s *memoryStore) Set(_ context.Context, session, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.sessions[session]
	if !ok {
		values = make(map[string]string)
		s.sessions[session] = values
	}
	values[key] = value
	return nil
}

func (s *memoryStore) Get(_ context.Context, session, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[session][key], nil
}

func (s *memoryStore) Snapshot(_ context.Context, session string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]string, len(s.sessions[session]))
	for k, v := range s.sessions[session] {
		snapshot[k] = v
	}
	return snapshot, nil
}

func (s *memoryStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
	return nil
}

// sessionTTL bounds abandoned harness sessions in Redis.
const sessionTTL = 24 * time.Hour

// redisStore keeps each session as a Redis hash, so harness restarts keep
// attempt counters and suspend data alive.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func sessionKey(session string) string {
	return fmt.Sprintf("harness:session:%s", session)
}

func (s *redisStore) Set(ctx context.Context, session, key, value string) error {
	redisKey := sessionKey(session)
	if err := s.client.HSet(ctx, redisKey, key, value).Err(); err != nil {
		return fmt.Errorf("failed to store runtime value: %w", err)
	}
	return s.client.Expire(ctx, redisKey, sessionTTL).Err()
}

func (s *redisStore) Get(ctx context.Context, session, key string) (string, error) {
	value, err := s.client.HGet(ctx, sessionKey(session), key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read runtime value: %w", err)
	}
	return value, nil
}

func (s *redisStore) Snapshot(ctx context.Context, session string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, sessionKey(session)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	return values, nil
}

func (s *redisStore) Clear(ctx context.Context, session string) error {
	return s.client.Del(ctx, sessionKey(session)).Err()
}
