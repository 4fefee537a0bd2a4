package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-minigame-bot/internal/model"
)

// MatchRepository handles match history persistence.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// Record writes one finished match to the history table.
// On a tie both winner and loser IDs are stored as zero.
func (r *MatchRepository) Record(ctx context.Context, chatID int64, game string, winnerID, loserID int64, tie bool) (*model.MatchRecord, error) {
	const query = `
		INSERT INTO match_history (chat_id, game, winner_id, loser_id, tie, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, chat_id, game, winner_id, loser_id, tie, created_at
	`

	var rec model.MatchRecord
	err := r.pool.QueryRow(ctx, query, chatID, game, winnerID, loserID, tie).Scan(
		&rec.ID,
		&rec.ChatID,
		&rec.Game,
		&rec.WinnerID,
		&rec.LoserID,
		&rec.Tie,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record match: %w", err)
	}

	return &rec, nil
}

// RecentByChat retrieves the most recent matches played in a chat.
func (r *MatchRepository) RecentByChat(ctx context.Context, chatID int64, limit int) ([]*model.MatchRecord, error) {
	const query = `
		SELECT id, chat_id, game, winner_id, loser_id, tie, created_at
		FROM match_history
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent matches: %w", err)
	}
	defer rows.Close()

	var records []*model.MatchRecord
	for rows.Next() {
		var rec model.MatchRecord
		err := rows.Scan(
			&rec.ID,
			&rec.ChatID,
			&rec.Game,
			&rec.WinnerID,
			&rec.LoserID,
			&rec.Tie,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match records: %w", err)
	}

	return records, nil
}

// CountByUser returns the number of decisive matches a user has won in a chat.
func (r *MatchRepository) CountByUser(ctx context.Context, chatID, userID int64, game string) (wins, losses int, err error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE winner_id = $2),
			COUNT(*) FILTER (WHERE loser_id = $2)
		FROM match_history
		WHERE chat_id = $1 AND game = $3 AND NOT tie
	`

	err = r.pool.QueryRow(ctx, query, chatID, userID, game).Scan(&wins, &losses)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return wins, losses, nil
}
