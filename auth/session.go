package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by a Store for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Store maps hashed session tokens to user IDs. Entries expire after their TTL.
type Store interface {
	Save(ctx context.Context, tokenHash string, userID int, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (int, error)
	Delete(ctx context.Context, tokenHash string) error
}

// RedisStore keeps sessions in Redis, so they survive restarts and are shared
// between instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

var _ Store = &RedisStore{}

func (rs *RedisStore) key(tokenHash string) string {
	return rs.prefix + tokenHash
}

// Save stores the session with the given time to live.
func (rs *RedisStore) Save(ctx context.Context, tokenHash string, userID int, ttl time.Duration) error {
	return rs.client.Set(ctx, rs.key(tokenHash), userID, ttl).Err()
}

// Get returns the user ID of the session.
func (rs *RedisStore) Get(ctx context.Context, tokenHash string) (int, error) {
	val, err := rs.client.Get(ctx, rs.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	return strconv.Atoi(val)
}

// Delete removes the session. Deleting an unknown session is not an error.
func (rs *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	return rs.client.Del(ctx, rs.key(tokenHash)).Err()
}

// MemoryStore keeps sessions in process memory. It suits development and
// single instance deployments; sessions are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	userID    int
	expiresAt time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

var _ Store = &MemoryStore{}

// Save stores the session with the given time to live.
func (ms *MemoryStore) Save(_ context.Context, tokenHash string, userID int, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[tokenHash] = memorySession{userID: userID, expiresAt: ms.now().Add(ttl)}
	return nil
}

// Get returns the user ID of the session. Expired sessions are dropped on access.
func (ms *MemoryStore) Get(_ context.Context, tokenHash string) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	s, ok := ms.sessions[tokenHash]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !ms.now().Before(s.expiresAt) {
		delete(ms.sessions, tokenHash)
		return 0, ErrSessionNotFound
	}
	return s.userID, nil
}

// Delete removes the session.
func (ms *MemoryStore) Delete(_ context.Context, tokenHash string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, tokenHash)
	return nil
}
