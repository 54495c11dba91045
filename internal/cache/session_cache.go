package cache

import (
	"adaudit/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps in-progress audit sessions. Each owner has at most one.
type SessionStore interface {
	Save(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, session *model.Session) error
	// Current returns the owner's in-progress session id, or "" when there is none
	Current(ctx context.Context, ownerID string) (string, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session store. Sessions expire ttl after their last save.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionStore {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *sessionCache) sessionKey(id string) string {
	return fmt.Sprintf("audit:session:%s", id)
}

func (c *sessionCache) ownerKey(ownerID string) string {
	return fmt.Sprintf("audit:owner:%s:session", ownerID)
}

func (c *sessionCache) Save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.sessionKey(session.ID), data, c.ttl)
		pipe.Set(ctx, c.ownerKey(session.OwnerID), session.ID, c.ttl)
		return nil
	})
	return err
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, session *model.Session) error {
	// Only clear the owner pointer if it still refers to this session
	current, err := c.Current(ctx, session.OwnerID)
	if err != nil {
		return err
	}
	keys := []string{c.sessionKey(session.ID)}
	if current == session.ID {
		keys = append(keys, c.ownerKey(session.OwnerID))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *sessionCache) Current(ctx context.Context, ownerID string) (string, error) {
	id, err := c.client.Get(ctx, c.ownerKey(ownerID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}
