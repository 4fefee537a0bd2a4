// Package model defines the data models for the mini-game bot.
package model

import "time"

// User represents a Telegram user known to the bot.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Rating is a per-player, per-game Elo rating scoped to one chat.
// Rows are created lazily with the initial rating on first settlement.
type Rating struct {
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Game      string    `db:"game"`
	Rating    float64   `db:"rating"`
	Matches   int       `db:"matches"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RankEntry is one leaderboard row: a rating joined with its username.
type RankEntry struct {
	UserID   int64   `db:"user_id"`
	Username string  `db:"username"`
	Rating   float64 `db:"rating"`
	Matches  int     `db:"matches"`
}

// MatchRecord is the history row written when a match finishes.
type MatchRecord struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Game      string    `db:"game"`
	WinnerID  int64     `db:"winner_id"` // 0 on a tie
	LoserID   int64     `db:"loser_id"`  // 0 on a tie
	Tie       bool      `db:"tie"`
	CreatedAt time.Time `db:"created_at"`
}
