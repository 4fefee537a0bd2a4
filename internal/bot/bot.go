package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/config"
	"telegram-minigame-bot/internal/handler"
	"telegram-minigame-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	matchService   *service.MatchService
	rankingService *service.RankingService

	// Handlers
	startHandler    *handler.StartHandler
	minigameHandler *handler.MinigameHandler
	rankingHandler  *handler.RankingHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config         *config.Config
	MatchService   *service.MatchService
	RankingService *service.RankingService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		matchService:   deps.MatchService,
		rankingService: deps.RankingService,
	}

	// Initialize handlers
	b.startHandler = handler.NewStartHandler()
	b.minigameHandler = handler.NewMinigameHandler(deps.MatchService, teleBot)
	b.rankingHandler = handler.NewRankingHandler(deps.RankingService)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.startHandler.HandleStart)
	b.bot.Handle("/help", b.startHandler.HandleHelp)

	// Game handlers
	b.bot.Handle("/rps", b.minigameHandler.HandleRPS)
	b.bot.Handle("/ttt", b.minigameHandler.HandleTicTacToe)
	b.bot.Handle("/handcricket", b.minigameHandler.HandleHandCricket)

	// Ranking handlers
	b.bot.Handle("/gametop", b.rankingHandler.HandleGameTop)
	b.bot.Handle("/mystats", b.rankingHandler.HandleMyStats)

	// Generic callback handler for the game keyboards
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to the mini-game handler.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")

	if strings.HasPrefix(data, handler.CallbackPrefix) {
		return b.minigameHandler.HandleCallback(c)
	}

	log.Debug().Str("data", data).Msg("Ignoring unknown callback")
	return nil
}

// Start starts the bot polling. Blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
