package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborvet/portal-api/internal/directory"
	"github.com/harborvet/portal-api/internal/providers"
)

// ErrSessionNotFound is returned when a wizard session id is unknown.
var ErrSessionNotFound = errors.New("wizard: session not found")

// SessionState is the durable part of a session: everything needed to
// resume the wizard on another instance. Transient matching state (slots,
// loading flags, timers) is recomputed after a resume.
type SessionState struct {
	ID            string                   `json:"id"`
	Authenticated bool                     `json:"authenticated"`
	ClientID      string                   `json:"clientId,omitempty"`
	Page          Page                     `json:"page"`
	Form          FormData                 `json:"form"`
	Profile       *directory.ClientProfile `json:"profile,omitempty"`
	Pets          []directory.Pet          `json:"pets,omitempty"`
	Providers     []providers.Provider     `json:"providers,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// Store persists wizard sessions.
type Store interface {
	Save(ctx context.Context, state *SessionState) error
	Load(ctx context.Context, id string) (*SessionState, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return "portal:wizard:session:" + id
}

func (s *RedisStore) Save(ctx context.Context, state *SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*SessionState, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SessionState)}
}

func (s *MemoryStore) Save(_ context.Context, state *SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var copied SessionState
	if err := json.Unmarshal(data, &copied); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.ID] = &copied
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
