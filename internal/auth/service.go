package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudclutches/storefront/internal/apperr"
)

var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

type Service struct {
	Users    UserStore
	Sessions SessionStore
}

// Login returns a fresh session token. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		CheckPassword(dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.Sessions.Create(ctx, Session{UserID: u.ID, Username: u.Username, CreatedAt: time.Now().UTC()})
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Sessions.Destroy(ctx, token)
}

// Authenticate resolves a token to its session, refreshing the idle expiry.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	return s.Sessions.Get(ctx, token)
}

// Me also checks the user still exists; a session for a removed user is dropped.
func (s *Service) Me(ctx context.Context, sess Session, token string) (string, error) {
	u, err := s.Users.GetByID(ctx, sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		_ = s.Sessions.Destroy(ctx, token)
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

const devPassword = "changeme"

// SeedAdmin creates the single admin account when the users table is empty.
func SeedAdmin(ctx context.Context, r *UserRepo, username, password string, production bool) (bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		if production {
			return false, errors.New("ADMIN_PASSWORD must be set to seed the admin account in production")
		}
		log.Printf("ADMIN_PASSWORD not set, seeding %s with the development password", username)
		password = devPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := r.Create(ctx, username, hash); err != nil {
		return false, err
	}
	return true, nil
}
