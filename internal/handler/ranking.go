package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/service"
)

// gameNames maps command arguments to game type tags and display names.
var gameNames = map[string]struct {
	Type  game.Type
	Label string
}{
	"rps":         {game.TypeRPS, "Rock-Paper-Scissors"},
	"ttt":         {game.TypeTicTacToe, "Tic-Tac-Toe"},
	"tictactoe":   {game.TypeTicTacToe, "Tic-Tac-Toe"},
	"handcricket": {game.TypeHandCricket, "Hand Cricket"},
	"hc":          {game.TypeHandCricket, "Hand Cricket"},
}

// RankingHandler handles rating leaderboard commands.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// HandleGameTop handles the /gametop command. Displays the chat's Elo
// leaderboard for one game.
func (h *RankingHandler) HandleGameTop(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /gametop <rps|ttt|handcricket>")
	}
	g, ok := gameNames[strings.ToLower(args[0])]
	if !ok {
		return c.Reply("Unknown game. Pick one of: rps, ttt, handcricket")
	}

	entries, err := h.rankingService.TopByGame(ctx, chat.ID, string(g.Type), service.DefaultLeaderboardSize)
	if err != nil {
		return c.Reply("Could not load the leaderboard, try again later.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %s — Top %d\n", g.Label, service.DefaultLeaderboardSize)
	sb.WriteString("━━━━━━━━━━━━━━━\n")

	if len(entries) == 0 {
		sb.WriteString("No rated matches yet.\n")
	} else {
		medals := []string{"🥇", "🥈", "🥉"}
		for i, e := range entries {
			rank := fmt.Sprintf("%d.", i+1)
			if i < 3 {
				rank = medals[i]
			}
			name := e.Username
			if name == "" {
				name = fmt.Sprintf("User%d", e.UserID)
			}
			fmt.Fprintf(&sb, "%s %s: %.0f (%d matches)\n", rank, name, e.Rating, e.Matches)
		}
	}

	return c.Reply(sb.String())
}

// HandleMyStats handles the /mystats command. Shows the sender's rating
// and decisive record for one game in this chat.
func (h *RankingHandler) HandleMyStats(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /mystats <rps|ttt|handcricket>")
	}
	g, ok := gameNames[strings.ToLower(args[0])]
	if !ok {
		return c.Reply("Unknown game. Pick one of: rps, ttt, handcricket")
	}

	rec, err := h.rankingService.PlayerRating(ctx, chat.ID, sender.ID, string(g.Type))
	if err != nil {
		return c.Reply("Could not load your stats, try again later.")
	}
	wins, losses, err := h.rankingService.PlayerRecord(ctx, chat.ID, sender.ID, string(g.Type))
	if err != nil {
		return c.Reply("Could not load your stats, try again later.")
	}

	return c.Reply(fmt.Sprintf(
		"📊 %s\nRating: %.0f\nRecord: %dW / %dL (%d rated matches)",
		g.Label, rec.Rating, wins, losses, rec.Matches,
	))
}
