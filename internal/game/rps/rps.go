// Package rps implements the Rock-Paper-Scissors match state machine.
package rps

import (
	"fmt"
	"math/rand"
	"strings"

	"telegram-minigame-bot/internal/game"
)

// Choice is one player's throw. ChoiceNone is the unset sentinel; a choice
// is immutable once set to anything else.
type Choice int

const (
	ChoiceNone Choice = iota
	ChoiceRock
	ChoicePaper
	ChoiceScissors
)

// beats maps each choice to the choice it defeats.
var beats = map[Choice]Choice{
	ChoiceRock:     ChoiceScissors,
	ChoicePaper:    ChoiceRock,
	ChoiceScissors: ChoicePaper,
}

// String returns the lowercase name of the choice.
func (c Choice) String() string {
	switch c {
	case ChoiceRock:
		return "rock"
	case ChoicePaper:
		return "paper"
	case ChoiceScissors:
		return "scissors"
	default:
		return "none"
	}
}

// Emoji returns the display symbol for the choice.
func (c Choice) Emoji() string {
	switch c {
	case ChoiceRock:
		return "🪨"
	case ChoicePaper:
		return "📄"
	case ChoiceScissors:
		return "✂️"
	default:
		return "❔"
	}
}

// ParseChoice converts a choice literal to a Choice. Unknown input maps to
// ChoiceNone.
func ParseChoice(s string) Choice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock":
		return ChoiceRock
	case "paper":
		return ChoicePaper
	case "scissors":
		return ChoiceScissors
	default:
		return ChoiceNone
	}
}

// Match is one Rock-Paper-Scissors game between two participants. It has two
// implicit states: awaiting choices, and terminal once both choices are in.
// Not goroutine-safe; the session registry serializes access.
type Match struct {
	players [2]game.Player
	choices map[int64]Choice
}

// NewMatch creates a match between two participants. Bot choices are filled
// immediately, so a human-vs-bot match resolves on the human's first throw
// and a bot-vs-bot match is terminal as soon as it is created.
func NewMatch(p1, p2 game.Player) (*Match, error) {
	if p1.ID == p2.ID {
		return nil, game.ErrSamePlayer
	}

	m := &Match{
		players: [2]game.Player{p1, p2},
		choices: map[int64]Choice{p1.ID: ChoiceNone, p2.ID: ChoiceNone},
	}
	for _, p := range m.players {
		if p.IsBot {
			m.choices[p.ID] = Choice(rand.Intn(3) + 1)
		}
	}
	return m, nil
}

// Type returns the game protocol tag.
func (m *Match) Type() game.Type {
	return game.TypeRPS
}

// Players returns the two participants.
func (m *Match) Players() [2]game.Player {
	return m.players
}

// MakeChoice records a choice for a player. It returns false without
// mutating state if the player is not a participant, the choice is the
// unset sentinel, or the player already chose.
func (m *Match) MakeChoice(playerID int64, c Choice) bool {
	current, ok := m.choices[playerID]
	if !ok || c == ChoiceNone || current != ChoiceNone {
		return false
	}
	m.choices[playerID] = c
	return true
}

// Over reports whether both participants have chosen.
func (m *Match) Over() bool {
	for _, c := range m.choices {
		if c == ChoiceNone {
			return false
		}
	}
	return true
}

// Apply implements game.Machine.
func (m *Match) Apply(playerID int64, act game.Action) game.Result {
	if _, ok := m.choices[playerID]; !ok {
		return game.Result{Status: game.StatusNotPlayerInGame}
	}
	if act.Name != "choice" {
		return game.Result{Status: game.StatusInvalidMove}
	}

	c := ParseChoice(act.Value)
	if c == ChoiceNone {
		return game.Result{Status: game.StatusInvalidMove}
	}
	if m.choices[playerID] != ChoiceNone {
		return game.Result{Status: game.StatusAlreadyChosen}
	}

	m.MakeChoice(playerID, c)

	if m.Over() {
		return game.Result{Status: game.StatusGameOver, Message: m.View()}
	}
	return game.Result{Status: game.StatusSuccess, Message: "Choice locked in. Waiting for the other player."}
}

// Final implements game.Machine. Equal choices tie; otherwise the winner is
// whichever player's choice beats the other's.
func (m *Match) Final() (game.FinalScore, bool) {
	if !m.Over() {
		return game.FinalScore{}, false
	}

	rated := !m.players[0].IsBot && !m.players[1].IsBot
	c1 := m.choices[m.players[0].ID]
	c2 := m.choices[m.players[1].ID]

	if c1 == c2 {
		return game.FinalScore{Tie: true, Rated: rated}, true
	}
	if beats[c1] == c2 {
		return game.FinalScore{WinnerID: m.players[0].ID, LoserID: m.players[1].ID, Rated: rated}, true
	}
	return game.FinalScore{WinnerID: m.players[1].ID, LoserID: m.players[0].ID, Rated: rated}, true
}

// View returns a text snapshot for the rendering layer.
func (m *Match) View() string {
	if !m.Over() {
		waiting := make([]string, 0, 2)
		for _, p := range m.players {
			if m.choices[p.ID] == ChoiceNone {
				waiting = append(waiting, "@"+p.Username)
			}
		}
		return fmt.Sprintf("✊ Rock-Paper-Scissors: waiting for %s", strings.Join(waiting, ", "))
	}

	c1 := m.choices[m.players[0].ID]
	c2 := m.choices[m.players[1].ID]
	head := fmt.Sprintf("@%s %s  vs  %s @%s",
		m.players[0].Username, c1.Emoji(), c2.Emoji(), m.players[1].Username)

	final, _ := m.Final()
	switch {
	case final.Tie:
		return head + "\n🤝 It's a tie!"
	case final.WinnerID == m.players[0].ID:
		return head + fmt.Sprintf("\n🏆 @%s wins!", m.players[0].Username)
	default:
		return head + fmt.Sprintf("\n🏆 @%s wins!", m.players[1].Username)
	}
}
