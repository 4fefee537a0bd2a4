// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/game/handcricket"
	"telegram-minigame-bot/internal/game/rps"
	"telegram-minigame-bot/internal/game/tictactoe"
	"telegram-minigame-bot/internal/service"
)

// Bot opponent identity. The negative ID can never collide with a
// Telegram user ID.
const (
	BotPlayerID   int64 = -1
	BotPlayerName       = "CPU"
)

// MinigameHandler handles the game commands and their inline keyboard
// callbacks. It keeps one panel message per live session so completion and
// eviction can update the chat after the fact.
type MinigameHandler struct {
	matches *service.MatchService
	bot     *tele.Bot

	panels sync.Map // session key -> *tele.Message
}

// NewMinigameHandler creates a MinigameHandler and wires the match
// service's completion and eviction hooks to panel updates.
func NewMinigameHandler(matches *service.MatchService, bot *tele.Bot) *MinigameHandler {
	h := &MinigameHandler{
		matches: matches,
		bot:     bot,
	}
	matches.OnFinished(h.onFinished)
	matches.OnEvicted(h.onEvicted)
	return h
}

// playerFromSender builds a game.Player from a Telegram user.
func playerFromSender(u *tele.User) game.Player {
	username := u.Username
	if username == "" {
		username = u.FirstName
	}
	return game.Player{ID: u.ID, Username: username}
}

// botPlayer is the built-in opponent.
func botPlayer() game.Player {
	return game.Player{ID: BotPlayerID, Username: BotPlayerName, IsBot: true}
}

// resolveOpponent picks the opponent for a challenge: "bot" as the first
// argument selects the built-in bot, otherwise the command must reply to a
// message from the challenged player.
func (h *MinigameHandler) resolveOpponent(c tele.Context) (game.Player, bool) {
	args := c.Args()
	if len(args) > 0 && args[0] == "bot" {
		return botPlayer(), true
	}
	msg := c.Message()
	if msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && !msg.ReplyTo.Sender.IsBot {
		return playerFromSender(msg.ReplyTo.Sender), true
	}
	return game.Player{}, false
}

// HandleRPS handles the /rps command.
func (h *MinigameHandler) HandleRPS(c tele.Context) error {
	return h.startMatch(c, "rps", func(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
		return h.matches.CreateRPS(ctx, chatID, p1, p2)
	})
}

// HandleTicTacToe handles the /ttt command.
func (h *MinigameHandler) HandleTicTacToe(c tele.Context) error {
	return h.startMatch(c, "ttt", func(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
		return h.matches.CreateTicTacToe(ctx, chatID, p1, p2)
	})
}

// HandleHandCricket handles the /handcricket command.
func (h *MinigameHandler) HandleHandCricket(c tele.Context) error {
	return h.startMatch(c, "handcricket", func(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error) {
		return h.matches.CreateHandCricket(ctx, chatID, p1, p2)
	})
}

func (h *MinigameHandler) startMatch(
	c tele.Context,
	name string,
	create func(ctx context.Context, chatID int64, p1, p2 game.Player) (string, error),
) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	opponent, ok := h.resolveOpponent(c)
	if !ok {
		return c.Reply("Reply to your opponent's message with /" + name + ", or use /" + name + " bot to play the computer.")
	}

	p1 := playerFromSender(sender)
	key, err := create(context.Background(), chat.ID, p1, opponent)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrSamePlayer):
			return c.Reply("You can't challenge yourself.")
		case errors.Is(err, game.ErrBotNotAllowed):
			return c.Reply("This game needs two human players.")
		case errors.Is(err, game.ErrBothBots):
			return c.Reply("At least one human has to play.")
		default:
			log.Error().Err(err).Str("game", name).Msg("Failed to create match")
			return c.Reply("Could not start the match, try again later.")
		}
	}

	text, markup, live := h.renderPanel(key)
	if !live {
		// The match resolved before the panel went out.
		return nil
	}

	msg, err := h.bot.Send(chat, text, markup)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send game panel")
		h.matches.Abort(key)
		return err
	}
	h.panels.Store(key, msg)
	return nil
}

// renderPanel builds the panel text and the phase-appropriate keyboard for
// a live session. live is false when the session no longer exists.
func (h *MinigameHandler) renderPanel(key string) (text string, markup *tele.ReplyMarkup, live bool) {
	live = h.matches.Inspect(key, func(m game.Machine) {
		text = m.View()
		switch mm := m.(type) {
		case *rps.Match:
			markup = RPSKeyboard(key)
		case *tictactoe.Match:
			var cells [3][3]string
			b := mm.Board()
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					cells[r][c] = b[r][c].Symbol()
				}
			}
			markup = TicTacToeKeyboard(key, cells)
		case *handcricket.Match:
			markup = HandCricketKeyboard(key, mm.Phase())
		}
	})
	return text, markup, live
}

// HandleCallback routes one inline button press to its session.
func (h *MinigameHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	tag, arg, key := DecodeCallback(callback.Data)
	act, ok := decodeAction(tag, arg)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown action"})
	}

	res := h.matches.Apply(key, sender.ID, act)
	switch res.Status {
	case game.StatusSuccess:
		text, markup, live := h.renderPanel(key)
		if live && callback.Message != nil {
			if _, err := h.bot.Edit(callback.Message, text, markup); err != nil {
				log.Debug().Err(err).Msg("Failed to edit game panel")
			}
		}
		return c.Respond(&tele.CallbackResponse{Text: res.Message})
	case game.StatusGameOver:
		// The finish hook has already replaced the panel.
		return c.Respond(&tele.CallbackResponse{Text: res.Message})
	default:
		return c.Respond(&tele.CallbackResponse{
			Text:      rejectionText(res.Status),
			ShowAlert: res.Status == game.StatusNotFound,
		})
	}
}

// rejectionText maps a rejected action status to user-facing feedback.
func rejectionText(s game.Status) string {
	switch s {
	case game.StatusNotFound:
		return "This match is over or expired."
	case game.StatusNotPlayerTurn:
		return "Not your turn."
	case game.StatusInvalidMove:
		return "That move is not allowed right now."
	case game.StatusAlreadyChosen:
		return "You already made your choice."
	case game.StatusNotPlayerInGame:
		return "You are not part of this match."
	default:
		return "Something went wrong."
	}
}

// onFinished replaces the panel of a completed match with its final view.
func (h *MinigameHandler) onFinished(chatID int64, key string, m game.Machine) {
	v, ok := h.panels.LoadAndDelete(key)
	if !ok {
		return
	}
	msg := v.(*tele.Message)
	if _, err := h.bot.Edit(msg, m.View(), &tele.ReplyMarkup{}); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to edit finished panel")
	}
}

// onEvicted replaces the panel of an abandoned match.
func (h *MinigameHandler) onEvicted(chatID int64, key string, m game.Machine) {
	v, ok := h.panels.LoadAndDelete(key)
	if !ok {
		return
	}
	msg := v.(*tele.Message)
	text := "⌛ Match abandoned after inactivity.\n\n" + m.View()
	if _, err := h.bot.Edit(msg, text, &tele.ReplyMarkup{}); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to edit evicted panel")
	}
}
