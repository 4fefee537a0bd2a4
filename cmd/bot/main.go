// Package main is the entry point for the Telegram mini-game bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-minigame-bot/internal/bot"
	"telegram-minigame-bot/internal/config"
	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/pkg/db"
	"telegram-minigame-bot/internal/repository"
	"telegram-minigame-bot/internal/service"
	"telegram-minigame-bot/internal/session"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	ratingRepo := repository.NewRatingRepository(dbPool.Pool)
	matchRepo := repository.NewMatchRepository(dbPool.Pool)

	// Initialize the session registry with configured timeouts
	registry := session.NewRegistry(map[game.Type]time.Duration{
		game.TypeRPS:         cfg.Games.RPSTimeout,
		game.TypeTicTacToe:   cfg.Games.TicTacToeTimeout,
		game.TypeHandCricket: cfg.Games.HandCricketTimeout,
	})

	// Initialize services
	matchService := service.NewMatchService(registry, ratingRepo, matchRepo, userRepo, cfg.Rating.KFactor)
	rankingService := service.NewRankingService(ratingRepo, matchRepo)

	// Create bot dependencies
	deps := &bot.Dependencies{
		Config:         cfg,
		MatchService:   matchService,
		RankingService: rankingService,
	}

	// Initialize bot
	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create game_ratings table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_ratings (
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			game VARCHAR(32) NOT NULL,
			rating DOUBLE PRECISION NOT NULL,
			matches INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (chat_id, user_id, game)
		);
		CREATE INDEX IF NOT EXISTS idx_game_ratings_board ON game_ratings(chat_id, game, rating DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: game_ratings table created")

	// Migration 3: Create match_history table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_history (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			game VARCHAR(32) NOT NULL,
			winner_id BIGINT NOT NULL DEFAULT 0,
			loser_id BIGINT NOT NULL DEFAULT 0,
			tie BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_match_history_chat_time ON match_history(chat_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: match_history table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
