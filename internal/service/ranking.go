package service

import (
	"context"

	"telegram-minigame-bot/internal/model"
	"telegram-minigame-bot/internal/repository"
)

// DefaultLeaderboardSize is how many players a leaderboard shows.
const DefaultLeaderboardSize = 10

// RankingService handles rating leaderboard operations.
type RankingService struct {
	ratingRepo *repository.RatingRepository
	matchRepo  *repository.MatchRepository
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(
	ratingRepo *repository.RatingRepository,
	matchRepo *repository.MatchRepository,
) *RankingService {
	return &RankingService{
		ratingRepo: ratingRepo,
		matchRepo:  matchRepo,
	}
}

// TopByGame retrieves the top rated players for one game in a chat.
func (s *RankingService) TopByGame(ctx context.Context, chatID int64, game string, limit int) ([]*model.RankEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.ratingRepo.TopByGame(ctx, chatID, game, limit)
}

// PlayerRating retrieves one player's rating for a game in a chat,
// falling back to the initial rating when they have never played.
func (s *RankingService) PlayerRating(ctx context.Context, chatID, userID int64, game string) (*model.Rating, error) {
	return s.ratingRepo.GetOrInit(ctx, chatID, userID, game)
}

// PlayerRecord retrieves a player's decisive win/loss record for a game.
func (s *RankingService) PlayerRecord(ctx context.Context, chatID, userID int64, game string) (wins, losses int, err error) {
	return s.matchRepo.CountByUser(ctx, chatID, userID, game)
}

// RecentMatches retrieves the latest finished matches in a chat.
func (s *RankingService) RecentMatches(ctx context.Context, chatID int64, limit int) ([]*model.MatchRecord, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.matchRepo.RecentByChat(ctx, chatID, limit)
}
