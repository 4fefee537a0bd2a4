package tictactoe

import (
	"fmt"
	"math/rand"
	"strings"

	"telegram-minigame-bot/internal/game"
)

// Result is the terminal outcome of a match.
type Result int

const (
	ResultNone Result = iota
	ResultXWins
	ResultOWins
	ResultTie
)

// Match is one Tic-Tac-Toe game. players[0] always plays X and moves first,
// players[1] always plays O; which participant lands in which slot is
// decided randomly at creation. Not goroutine-safe; the session registry
// serializes access.
type Match struct {
	players [2]game.Player
	board   Board
	turn    Mark
	moves   int
	result  Result
}

// NewMatch creates a match between two participants, assigning X and O at
// random. Two bots may not face each other.
func NewMatch(p1, p2 game.Player) (*Match, error) {
	if p1.ID == p2.ID {
		return nil, game.ErrSamePlayer
	}
	if p1.IsBot && p2.IsBot {
		return nil, game.ErrBothBots
	}

	if rand.Intn(2) == 1 {
		p1, p2 = p2, p1
	}
	m := &Match{
		players: [2]game.Player{p1, p2},
		turn:    X,
	}

	// A bot in the X slot opens immediately.
	if m.players[0].IsBot {
		m.botMove()
	}
	return m, nil
}

// Type returns the game protocol tag.
func (m *Match) Type() game.Type {
	return game.TypeTicTacToe
}

// Players returns the two participants; index 0 is the X side.
func (m *Match) Players() [2]game.Player {
	return m.players
}

// Board returns a copy of the grid.
func (m *Match) Board() Board {
	return m.board
}

// Result returns the terminal result, or ResultNone while in progress.
func (m *Match) Result() Result {
	return m.result
}

// CurrentPlayer returns the participant whose turn it is.
func (m *Match) CurrentPlayer() game.Player {
	if m.turn == X {
		return m.players[0]
	}
	return m.players[1]
}

// MakeMove marks (row, col) for the side to move. It fails without mutating
// state if the game is over, the cell is out of range or the cell is taken.
// On success it updates the move counter, evaluates termination and, if the
// game goes on, flips the turn.
func (m *Match) MakeMove(row, col int) bool {
	if m.result != ResultNone {
		return false
	}
	if !InRange(row, col) || m.board[row][col] != Empty {
		return false
	}

	m.board[row][col] = m.turn
	m.moves++

	switch w := m.board.Winner(); {
	case w == X:
		m.result = ResultXWins
	case w == O:
		m.result = ResultOWins
	case m.moves == 9:
		m.result = ResultTie
	default:
		m.turn = opponent(m.turn)
	}
	return true
}

// botMove plays one minimax move for the side to move.
func (m *Match) botMove() {
	if m.result != ResultNone {
		return
	}
	row, col := GetBestMove(&m.board, m.turn)
	m.MakeMove(row, col)
}

// Over reports whether the match reached a terminal state.
func (m *Match) Over() bool {
	return m.result != ResultNone
}

// Apply implements game.Machine. After a successful human move the bot
// opponent, if any, replies within the same call.
func (m *Match) Apply(playerID int64, act game.Action) game.Result {
	idx := -1
	for i, p := range m.players {
		if p.ID == playerID {
			idx = i
		}
	}
	if idx < 0 {
		return game.Result{Status: game.StatusNotPlayerInGame}
	}
	if act.Name != "move" {
		return game.Result{Status: game.StatusInvalidMove}
	}
	if m.result != ResultNone {
		return game.Result{Status: game.StatusInvalidMove}
	}
	if m.CurrentPlayer().ID != playerID {
		return game.Result{Status: game.StatusNotPlayerTurn}
	}

	if !m.MakeMove(act.Row, act.Col) {
		return game.Result{Status: game.StatusInvalidMove}
	}

	if m.result == ResultNone && m.CurrentPlayer().IsBot {
		m.botMove()
	}

	if m.result != ResultNone {
		return game.Result{Status: game.StatusGameOver, Message: m.View()}
	}
	return game.Result{Status: game.StatusSuccess, Message: m.View()}
}

// Final implements game.Machine.
func (m *Match) Final() (game.FinalScore, bool) {
	if m.result == ResultNone {
		return game.FinalScore{}, false
	}

	rated := !m.players[0].IsBot && !m.players[1].IsBot
	switch m.result {
	case ResultXWins:
		return game.FinalScore{WinnerID: m.players[0].ID, LoserID: m.players[1].ID, Rated: rated}, true
	case ResultOWins:
		return game.FinalScore{WinnerID: m.players[1].ID, LoserID: m.players[0].ID, Rated: rated}, true
	default:
		return game.FinalScore{Tie: true, Rated: rated}, true
	}
}

// View returns a text snapshot for the rendering layer.
func (m *Match) View() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s @%s  vs  %s @%s\n",
		X.Symbol(), m.players[0].Username, O.Symbol(), m.players[1].Username)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sb.WriteString(m.board[r][c].Symbol())
		}
		sb.WriteString("\n")
	}

	switch m.result {
	case ResultXWins:
		fmt.Fprintf(&sb, "🏆 @%s wins!", m.players[0].Username)
	case ResultOWins:
		fmt.Fprintf(&sb, "🏆 @%s wins!", m.players[1].Username)
	case ResultTie:
		sb.WriteString("🤝 It's a tie!")
	default:
		fmt.Fprintf(&sb, "Turn: %s @%s", m.turn.Symbol(), m.CurrentPlayer().Username)
	}
	return sb.String()
}
