package cache

import (
	"adaudit/internal/model"
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

type memorySessionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
	owners   map[string]string
}

// NewMemorySessionCache creates a process-local session store with the same
// expiry semantics as the Redis one
func NewMemorySessionCache(ttl time.Duration) SessionStore {
	return newMemorySessionCache(ttl, time.Now)
}

func newMemorySessionCache(ttl time.Duration, now func() time.Time) *memorySessionCache {
	return &memorySessionCache{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]memorySession),
		owners:   make(map[string]string),
	}
}

func (c *memorySessionCache) Save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = c.now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.ID] = memorySession{data: data, expiresAt: session.UpdatedAt.Add(c.ttl)}
	c.owners[session.OwnerID] = session.ID
	return nil
}

func (c *memorySessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	entry, ok := c.sessions[id]
	if ok && !c.now().Before(entry.expiresAt) {
		delete(c.sessions, id)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session model.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *memorySessionCache) Delete(ctx context.Context, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, session.ID)
	if c.owners[session.OwnerID] == session.ID {
		delete(c.owners, session.OwnerID)
	}
	return nil
}

func (c *memorySessionCache) Current(ctx context.Context, ownerID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.owners[ownerID]
	if !ok {
		return "", nil
	}
	if entry, live := c.sessions[id]; !live || !c.now().Before(entry.expiresAt) {
		delete(c.owners, ownerID)
		return "", nil
	}
	return id, nil
}
