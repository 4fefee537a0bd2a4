// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-minigame-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create creates a new user with the given Telegram ID and username.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, username string) (*model.User, error) {
	const query = `
		INSERT INTO users (telegram_id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING telegram_id, username, created_at, updated_at
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, telegramID, username).Scan(
		&user.TelegramID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	const query = `
		SELECT telegram_id, username, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetOrCreate retrieves a user by Telegram ID, creating one if it doesn't exist.
// This is useful for ensuring a user exists before recording match results.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error) {
	// Try to get existing user first
	user, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	// User doesn't exist, create new one
	user, err = r.Create(ctx, telegramID, username)
	if err != nil {
		// Handle race condition: another request might have created the user
		user, err = r.GetByID(ctx, telegramID)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	return user, true, nil
}

// UpdateUsername updates a user's username.
// This is useful when a user changes their Telegram username.
func (r *UserRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	const query = `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Exists checks if a user with the given Telegram ID exists.
func (r *UserRepository) Exists(ctx context.Context, telegramID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
