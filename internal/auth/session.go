package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Session struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrNoSession = fmt.Errorf("session %w", apperr.ErrUnauthorized)

// SessionStore keeps server-side sessions behind an opaque token.
type SessionStore interface {
	Create(ctx context.Context, s Session) (string, error)
	// Get refreshes the idle expiry on every hit.
	Get(ctx context.Context, token string) (Session, error)
	Destroy(ctx context.Context, token string) error
}

type RedisSessions struct {
	RDB redis.Cmdable
	TTL time.Duration
}

func sessionKey(token string) string { return fmt.Sprintf(redisx.KeySession, token) }

func (r *RedisSessions) Create(ctx context.Context, s Session) (string, error) {
	token := uuid.NewString()
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	if err := r.RDB.Set(ctx, sessionKey(token), b, r.TTL).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (r *RedisSessions) Get(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	key := sessionKey(token)
	raw, err := r.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, ErrNoSession
	}
	if err := r.RDB.Expire(ctx, key, r.TTL).Err(); err != nil {
		return Session{}, fmt.Errorf("refresh session: %w", err)
	}
	return s, nil
}

func (r *RedisSessions) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.RDB.Del(ctx, sessionKey(token)).Err()
}
