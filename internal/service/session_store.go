package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"evinburada/internal/metrics"
	"evinburada/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps conversations between turns. Stores are caches: a
// session that expires is simply gone.
type SessionStore interface {
	// Get returns a copy of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}

// TurnGuard admits at most one in-flight turn per session.
type TurnGuard interface {
	// Acquire reports false when a turn already holds the session. The
	// returned token identifies this holder to Release.
	Acquire(ctx context.Context, id string) (string, bool, error)
	// Release frees the session only while token still holds it.
	Release(ctx context.Context, id, token string) error
}

type memoryEntry struct {
	session   *model.Session
	expiresAt time.Time
}

// MemoryStore is the default in-process store with sliding expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after their last save.
// A non-positive ttl keeps sessions until deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *model.Session) error {
	e := memoryEntry{session: s.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.sessions[s.ID] = e
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return nil
}

// EvictExpired drops expired sessions and returns how many were removed.
func (m *MemoryStore) EvictExpired() int {
	m.mu.Lock()
	removed := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

// MemoryGuard is the in-process TurnGuard.
type MemoryGuard struct {
	mu       sync.Mutex
	inFlight map[string]string
}

// NewMemoryGuard creates an empty guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inFlight: make(map[string]string)}
}

func (g *MemoryGuard) Acquire(ctx context.Context, id string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[id]; busy {
		return "", false, nil
	}
	token := uuid.NewString()
	g.inFlight[id] = token
	return token, true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, id, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[id] == token {
		delete(g.inFlight, id)
	}
	return nil
}

const (
	redisSessionPrefix = "evinburada:session:"
	redisTurnPrefix    = "evinburada:turn:"
)

// RedisStore keeps sessions as JSON values with a TTL so several server
// instances can share conversations.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store over client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	val, err := r.client.Get(ctx, redisSessionPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisSessionPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisSessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RedisGuard is a TurnGuard shared across instances. The lock expires after
// ttl so a crashed turn cannot wedge a session.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard creates a guard over client.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// releaseScript deletes the lock only while it still carries the caller's
// token, so a turn that outlived its expiry cannot free a newer holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (g *RedisGuard) Acquire(ctx context.Context, id string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, redisTurnPrefix+id, token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire turn lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (g *RedisGuard) Release(ctx context.Context, id, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{redisTurnPrefix + id}, token).Err(); err != nil {
		return fmt.Errorf("failed to release turn lock: %w", err)
	}
	return nil
}
