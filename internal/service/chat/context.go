package chat

import (
	"context"
	"sync"
	"time"

	"github.com/zhouzirui/objectchat/backend/internal/model/chat"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
)

// Context is one anonymous client's conversation state. Contexts are keyed by
// an opaque client id issued by the turn endpoint; history and active object
// are never shared between clients.
type Context struct {
	Object    string          `json:"object"`
	Persona   persona.Persona `json:"persona"`
	History   []chat.Turn     `json:"history"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ContextStore persists anonymous contexts. Implementations evict entries
// after a TTL; a missing entry simply starts a fresh conversation.
type ContextStore interface {
	Get(ctx context.Context, clientID string) (Context, bool, error)
	Put(ctx context.Context, clientID string, c Context) error
}

// MemoryContextStore is the default in-process ContextStore.
type MemoryContextStore struct {
	mu        sync.Mutex
	entries   map[string]Context
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryContextStore returns an empty store evicting entries idle longer
// than ttl.
func NewMemoryContextStore(ttl time.Duration) *MemoryContextStore {
	return &MemoryContextStore{
		entries: make(map[string]Context),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryContextStore) Get(_ context.Context, clientID string) (Context, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[clientID]
	if !ok {
		return Context{}, false, nil
	}
	if s.now().Sub(entry.UpdatedAt) > s.ttl {
		delete(s.entries, clientID)
		return Context{}, false, nil
	}
	return entry, true, nil
}

func (s *MemoryContextStore) Put(_ context.Context, clientID string, c Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = s.now()
	}
	s.entries[clientID] = c
	s.sweepLocked()
	return nil
}

// sweepLocked drops expired entries at most once per TTL interval.
func (s *MemoryContextStore) sweepLocked() {
	now := s.now()
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, entry := range s.entries {
		if now.Sub(entry.UpdatedAt) > s.ttl {
			delete(s.entries, id)
		}
	}
}
