package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

var ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)

type UserRepo struct{ DB postgres.DB }

func (r *UserRepo) scanOne(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// GetByUsername is an exact, case-sensitive match.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	u, err := r.scanOne(r.DB.QueryRow(ctx, `SELECT id, username, password FROM users WHERE username=$1`, username))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, err := r.scanOne(r.DB.QueryRow(ctx, `SELECT id, username, password FROM users WHERE id=$1`, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, err
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) Create(ctx context.Context, username, hash string) (User, error) {
	u, err := r.scanOne(r.DB.QueryRow(ctx,
		`INSERT INTO users(username, password) VALUES ($1, $2) RETURNING id, username, password`,
		username, hash))
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
