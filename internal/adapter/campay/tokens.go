package campay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore caches the gateway access token. Get reports ok=false when no
// unexpired token is stored.
type TokenStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process.
type MemoryTokenStore struct {
	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

func (s *MemoryTokenStore) Get(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || !s.now().Before(s.expires) {
		return "", false, nil
	}
	return s.token, true, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expires = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expires = time.Time{}
	return nil
}

// RedisTokenStore shares one token between service replicas. Expiry is
// delegated to the key TTL.
type RedisTokenStore struct {
	rdb *redis.Client
	key string
}

func NewRedisTokenStore(rdb *redis.Client, key string) *RedisTokenStore {
	if key == "" {
		key = "echopub:campay:token"
	}
	return &RedisTokenStore{rdb: rdb, key: key}
}

func (s *RedisTokenStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

func (s *RedisTokenStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key, token, ttl).Err()
}

func (s *RedisTokenStore) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
