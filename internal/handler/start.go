package handler

import (
	tele "gopkg.in/telebot.v3"
)

const helpText = `🎮 Mini-game bot

Challenge someone by replying to their message:
/rps — Rock-Paper-Scissors
/ttt — Tic-Tac-Toe
/handcricket — Hand Cricket

Play the computer:
/rps bot
/ttt bot

Ratings:
/gametop <rps|ttt|handcricket> — chat leaderboard
/mystats <rps|ttt|handcricket> — your rating and record

Matches time out when nobody moves: 5 minutes for RPS,
10 for Tic-Tac-Toe; Hand Cricket allows 15 minutes per turn.`

// StartHandler handles /start and /help.
type StartHandler struct{}

// NewStartHandler creates a new StartHandler.
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// HandleStart handles the /start command.
func (h *StartHandler) HandleStart(c tele.Context) error {
	return c.Reply(helpText)
}

// HandleHelp handles the /help command.
func (h *StartHandler) HandleHelp(c tele.Context) error {
	return c.Reply(helpText)
}
