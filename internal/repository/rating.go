package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-minigame-bot/internal/model"
	"telegram-minigame-bot/internal/rating"
)

// RatingRepository handles per-chat, per-game Elo rating persistence.
type RatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new RatingRepository instance.
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// GetOrInit retrieves a player's rating for a game in a chat.
// If no row exists yet the initial rating is returned without creating one;
// the row is written on first settlement.
func (r *RatingRepository) GetOrInit(ctx context.Context, chatID, userID int64, game string) (*model.Rating, error) {
	const query = `
		SELECT chat_id, user_id, game, rating, matches, updated_at
		FROM game_ratings
		WHERE chat_id = $1 AND user_id = $2 AND game = $3
	`

	var rec model.Rating
	err := r.pool.QueryRow(ctx, query, chatID, userID, game).Scan(
		&rec.ChatID,
		&rec.UserID,
		&rec.Game,
		&rec.Rating,
		&rec.Matches,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Rating{
				ChatID: chatID,
				UserID: userID,
				Game:   game,
				Rating: rating.Initial,
			}, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &rec, nil
}

// SetRating upserts a player's rating and bumps their match counter.
func (r *RatingRepository) SetRating(ctx context.Context, chatID, userID int64, game string, value float64) error {
	const query = `
		INSERT INTO game_ratings (chat_id, user_id, game, rating, matches, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW())
		ON CONFLICT (chat_id, user_id, game)
		DO UPDATE SET rating = $4, matches = game_ratings.matches + 1, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, chatID, userID, game, value); err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}

	return nil
}

// TopByGame retrieves the top N rated players for a game in a chat.
func (r *RatingRepository) TopByGame(ctx context.Context, chatID int64, game string, limit int) ([]*model.RankEntry, error) {
	const query = `
		SELECT gr.user_id, u.username, gr.rating, gr.matches
		FROM game_ratings gr
		JOIN users u ON u.telegram_id = gr.user_id
		WHERE gr.chat_id = $1 AND gr.game = $2
		ORDER BY gr.rating DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, chatID, game, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top ratings: %w", err)
	}
	defer rows.Close()

	var entries []*model.RankEntry
	for rows.Next() {
		var e model.RankEntry
		err := rows.Scan(
			&e.UserID,
			&e.Username,
			&e.Rating,
			&e.Matches,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rank entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rank entries: %w", err)
	}

	return entries, nil
}
