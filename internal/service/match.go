// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/game/handcricket"
	"telegram-minigame-bot/internal/game/rps"
	"telegram-minigame-bot/internal/game/tictactoe"
	"telegram-minigame-bot/internal/model"
	"telegram-minigame-bot/internal/pkg/lock"
	"telegram-minigame-bot/internal/rating"
	"telegram-minigame-bot/internal/session"
)

const settleTimeout = 10 * time.Second

// RatingStore is the rating persistence the settlement path needs.
// Satisfied by repository.RatingRepository.
type RatingStore interface {
	GetOrInit(ctx context.Context, chatID, userID int64, game string) (*model.Rating, error)
	SetRating(ctx context.Context, chatID, userID int64, game string, value float64) error
}

// MatchStore is the match history persistence the settlement path needs.
// Satisfied by repository.MatchRepository.
type MatchStore interface {
	Record(ctx context.Context, chatID int64, game string, winnerID, loserID int64, tie bool) (*model.MatchRecord, error)
}

// UserStore ensures participants exist before a match is recorded.
// Satisfied by repository.UserRepository.
type UserStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*model.User, bool, error)
}

// MatchService owns the lifecycle of live matches: it creates sessions in
// the registry, routes player actions to them, and settles Elo ratings and
// match history when a match finishes. Settlement is best effort; a storage
// failure is logged and never contests a finished result.
type MatchService struct {
	registry *session.Registry
	ratings  RatingStore
	matches  MatchStore
	users    UserStore
	locks    *lock.PlayerLock
	kFactor  float64

	// Announce hooks for the presentation layer. Optional.
	onFinished func(chatID int64, key string, m game.Machine)
	onEvicted  func(chatID int64, key string, m game.Machine)
}

// NewMatchService creates a MatchService and wires itself into the
// registry's completion and eviction callbacks.
func NewMatchService(
	registry *session.Registry,
	ratings RatingStore,
	matches MatchStore,
	users UserStore,
	kFactor float64,
) *MatchService {
	s := &MatchService{
		registry: registry,
		ratings:  ratings,
		matches:  matches,
		users:    users,
		locks:    lock.NewPlayerLock(),
		kFactor:  kFactor,
	}
	registry.OnFinish(s.handleFinish)
	registry.OnEvict(s.handleEvict)
	return s
}

// OnFinished registers a hook called after a match completes and settles.
func (s *MatchService) OnFinished(fn func(chatID int64, key string, m game.Machine)) {
	s.onFinished = fn
}

// OnEvicted registers a hook called after an idle match is evicted.
func (s *MatchService) OnEvicted(fn func(chatID int64, key string, m game.Machine)) {
	s.onEvicted = fn
}

// sessionKey embeds the chat ID so the completion callbacks can settle
// without a side lookup table.
func sessionKey(chatID int64) string {
	return fmt.Sprintf("%d:%s", chatID, uuid.NewString())
}

// chatFromKey recovers the chat ID embedded by sessionKey.
func chatFromKey(key string) int64 {
	prefix, _, ok := strings.Cut(key, ":")
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// CreateRPS starts a Rock-Paper-Scissors match in the given chat and
// returns the session key. Pairing errors from the game constructor
// (same player twice, two bots) pass through unchanged.
func (s *MatchService) CreateRPS(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
	m, err := rps.NewMatch(p1, p2)
	if err != nil {
		return "", err
	}
	return s.create(ctx, chatID, m, p1, p2)
}

// CreateTicTacToe starts a Tic-Tac-Toe match in the given chat.
func (s *MatchService) CreateTicTacToe(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
	m, err := tictactoe.NewMatch(p1, p2)
	if err != nil {
		return "", err
	}
	return s.create(ctx, chatID, m, p1, p2)
}

// CreateHandCricket starts a Hand Cricket match in the given chat.
func (s *MatchService) CreateHandCricket(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
	m, err := handcricket.NewMatch(p1, p2)
	if err != nil {
		return "", err
	}
	return s.create(ctx, chatID, m, p1, p2)
}

func (s *MatchService) create(ctx context.Context, chatID int64, m game.Machine, players ...game.Player) (string, error) {
	// Make sure human participants exist before any settlement can
	// reference them.
	for _, p := range players {
		if p.IsBot {
			continue
		}
		if _, _, err := s.users.GetOrCreate(ctx, p.ID, p.Username); err != nil {
			return "", fmt.Errorf("failed to ensure user %d: %w", p.ID, err)
		}
	}

	key, err := s.registry.Create(sessionKey(chatID), m)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("key", key).
		Str("game", string(m.Type())).
		Int64("chat_id", chatID).
		Msg("Match created")

	return key, nil
}

// Apply routes one player action to a live session.
func (s *MatchService) Apply(key string, playerID int64, act game.Action) game.Result {
	return s.registry.ApplyAction(key, playerID, act)
}

// View returns the current rendering of a live session.
func (s *MatchService) View(key string) (string, bool) {
	return s.registry.Peek(key)
}

// Inspect runs a read-only function against a live session's machine,
// serialized with action routing. Returns false if the session is gone.
func (s *MatchService) Inspect(key string, fn func(m game.Machine)) bool {
	return s.registry.Inspect(key, fn)
}

// Abort removes a live session without settlement.
func (s *MatchService) Abort(key string) {
	s.registry.Remove(key)
}

// Active reports whether a session key still refers to a live match.
func (s *MatchService) Active(key string) bool {
	return s.registry.IsActive(key)
}

// handleFinish settles a completed match: Elo update under the pair lock,
// then a history row. Runs on the registry's completion path.
func (s *MatchService) handleFinish(key string, m game.Machine) {
	chatID := chatFromKey(key)
	fs, ok := m.Final()
	if !ok {
		log.Error().Str("key", key).Msg("Finished match has no final score")
		return
	}

	if fs.Rated {
		a, b := fs.WinnerID, fs.LoserID
		if fs.Tie {
			// Tied results carry no winner/loser; settle the pair as listed.
			ps := m.Players()
			a, b = ps[0].ID, ps[1].ID
		}
		s.settle(chatID, m.Type(), a, b, fs)
	}

	if s.onFinished != nil {
		s.onFinished(chatID, key, m)
	}
}

// settle applies the Elo update for one decisive or tied rated match.
// Both new ratings derive from pre-update snapshots. For a decisive result
// a is the winner; for a tie the order does not matter.
func (s *MatchService) settle(chatID int64, gt game.Type, a, b int64, fs game.FinalScore) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	err := s.locks.WithPairLock(a, b, func() error {
		ra, err := s.ratings.GetOrInit(ctx, chatID, a, string(gt))
		if err != nil {
			return err
		}
		rb, err := s.ratings.GetOrInit(ctx, chatID, b, string(gt))
		if err != nil {
			return err
		}

		newA, newB := rating.Update(ra.Rating, rb.Rating, fs.Tie, s.kFactor)

		if err := s.ratings.SetRating(ctx, chatID, a, string(gt), newA); err != nil {
			return err
		}
		if err := s.ratings.SetRating(ctx, chatID, b, string(gt), newB); err != nil {
			return err
		}

		log.Info().
			Int64("chat_id", chatID).
			Str("game", string(gt)).
			Int64("player_a", a).
			Int64("player_b", b).
			Bool("tie", fs.Tie).
			Float64("rating_a", newA).
			Float64("rating_b", newB).
			Msg("Ratings settled")
		return nil
	})
	if err != nil {
		// The result stands even when the rating write fails.
		log.Warn().Err(err).Int64("chat_id", chatID).Str("game", string(gt)).Msg("Rating settlement failed")
	}

	if _, err := s.matches.Record(ctx, chatID, string(gt), fs.WinnerID, fs.LoserID, fs.Tie); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to record match history")
	}
}

// handleEvict runs when an idle session times out. No settlement happens;
// an abandoned match has no result.
func (s *MatchService) handleEvict(key string, m game.Machine) {
	chatID := chatFromKey(key)
	log.Info().
		Str("key", key).
		Str("game", string(m.Type())).
		Int64("chat_id", chatID).
		Msg("Idle match evicted")

	if s.onEvicted != nil {
		s.onEvicted(chatID, key, m)
	}
}
