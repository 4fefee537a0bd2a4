package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/game/handcricket"
)

const (
	// CallbackPrefix is the prefix for all mini-game callback data.
	CallbackPrefix = "mg_"

	gameTagRPS         = "rps"
	gameTagTicTacToe   = "ttt"
	gameTagHandCricket = "hc"
)

// EncodeCallback encodes a game tag, move argument and session key into
// callback data. Session keys never contain underscores, so the three
// parts split back unambiguously.
func EncodeCallback(tag, arg, key string) string {
	return fmt.Sprintf("%s%s_%s_%s", CallbackPrefix, tag, arg, key)
}

// DecodeCallback decodes callback data into game tag, move argument and
// session key. Returns empty strings for foreign or malformed data.
func DecodeCallback(data string) (tag, arg, key string) {
	// Telebot v3 may add a \f prefix to callback data
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", ""
	}
	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), "_", 3)
	if len(parts) != 3 {
		return "", "", ""
	}
	return parts[0], parts[1], parts[2]
}

// decodeAction maps a decoded tag and argument onto a game action.
// The bool is false for arguments that map to nothing.
func decodeAction(tag, arg string) (game.Action, bool) {
	switch tag {
	case gameTagRPS:
		switch arg {
		case "rock", "paper", "scissors":
			return game.Action{Name: "choice", Value: arg}, true
		}
	case gameTagTicTacToe:
		if len(arg) == 2 && arg[0] >= '0' && arg[0] <= '2' && arg[1] >= '0' && arg[1] <= '2' {
			return game.Action{Name: "move", Row: int(arg[0] - '0'), Col: int(arg[1] - '0')}, true
		}
	case gameTagHandCricket:
		switch {
		case arg == "even" || arg == "odd":
			return game.Action{Name: "parity", Value: arg}, true
		case arg == "bat" || arg == "bowl":
			return game.Action{Name: "batbowl", Value: arg}, true
		case len(arg) == 2 && arg[0] == 't' && arg[1] >= '1' && arg[1] <= '6':
			return game.Action{Name: "tossnum", Number: int(arg[1] - '0')}, true
		case len(arg) == 2 && arg[0] == 'n' && arg[1] >= '1' && arg[1] <= '6':
			return game.Action{Name: "number", Number: int(arg[1] - '0')}, true
		}
	}
	return game.Action{}, false
}

// RPSKeyboard builds the one-row throw keyboard.
func RPSKeyboard(key string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Text: "🪨 Rock", Data: EncodeCallback(gameTagRPS, "rock", key)},
		{Text: "📄 Paper", Data: EncodeCallback(gameTagRPS, "paper", key)},
		{Text: "✂️ Scissors", Data: EncodeCallback(gameTagRPS, "scissors", key)},
	}}}
}

// TicTacToeKeyboard builds the 3x3 cell grid. Cell text mirrors the given
// board symbols; empty cells show a placeholder.
func TicTacToeKeyboard(key string, cells [3][3]string) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 3)
	for r := 0; r < 3; r++ {
		row := make([]tele.InlineButton, 3)
		for c := 0; c < 3; c++ {
			text := cells[r][c]
			if text == "" {
				text = "·"
			}
			row[c] = tele.InlineButton{
				Text: text,
				Data: EncodeCallback(gameTagTicTacToe, fmt.Sprintf("%d%d", r, c), key),
			}
		}
		rows[r] = row
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// HandCricketKeyboard builds the input keyboard for the current phase.
// Terminal matches get no keyboard.
func HandCricketKeyboard(key string, phase handcricket.Phase) *tele.ReplyMarkup {
	switch phase {
	case handcricket.PhaseTossEvenOdd:
		return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
			{Text: "Even", Data: EncodeCallback(gameTagHandCricket, "even", key)},
			{Text: "Odd", Data: EncodeCallback(gameTagHandCricket, "odd", key)},
		}}}
	case handcricket.PhaseTossNumber:
		return &tele.ReplyMarkup{InlineKeyboard: numberRows(key, 't')}
	case handcricket.PhaseTossBatBowl:
		return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
			{Text: "🏏 Bat", Data: EncodeCallback(gameTagHandCricket, "bat", key)},
			{Text: "🥎 Bowl", Data: EncodeCallback(gameTagHandCricket, "bowl", key)},
		}}}
	case handcricket.PhaseInning1, handcricket.PhaseInning2:
		return &tele.ReplyMarkup{InlineKeyboard: numberRows(key, 'n')}
	default:
		return nil
	}
}

// numberRows builds two rows of 1-6 buttons with the given argument prefix.
func numberRows(key string, prefix byte) [][]tele.InlineButton {
	rows := make([][]tele.InlineButton, 2)
	for i := 0; i < 2; i++ {
		row := make([]tele.InlineButton, 3)
		for j := 0; j < 3; j++ {
			n := i*3 + j + 1
			row[j] = tele.InlineButton{
				Text: fmt.Sprintf("%d", n),
				Data: EncodeCallback(gameTagHandCricket, fmt.Sprintf("%c%d", prefix, n), key),
			}
		}
		rows[i] = row
	}
	return rows
}
