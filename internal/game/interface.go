// Package game defines the shared contracts for the turn-based mini-games
// hosted by the session registry. Each game package implements Machine; the
// registry treats machines as opaque payloads and serializes all access to
// a single machine, so implementations do not need internal locking.
package game

// Type identifies a mini-game protocol.
type Type string

const (
	TypeRPS         Type = "rps"
	TypeTicTacToe   Type = "tictactoe"
	TypeHandCricket Type = "handcricket"
)

// Player identifies a match participant. Bot participants have IsBot set and
// a synthetic non-positive ID.
type Player struct {
	ID       int64
	Username string
	IsBot    bool
}

// Status classifies the outcome of applying one action to a live match.
// Every protocol violation is a distinct value so the rendering layer can
// tell "your move was illegal" from "this match no longer exists".
type Status int

const (
	StatusSuccess Status = iota
	StatusGameOver
	StatusNotFound
	StatusNotPlayerTurn
	StatusInvalidMove
	StatusAlreadyChosen
	StatusNotPlayerInGame
	StatusError
)

// String returns a short identifier for logging.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusGameOver:
		return "game_over"
	case StatusNotFound:
		return "not_found"
	case StatusNotPlayerTurn:
		return "not_player_turn"
	case StatusInvalidMove:
		return "invalid_move"
	case StatusAlreadyChosen:
		return "already_chosen"
	case StatusNotPlayerInGame:
		return "not_player_in_game"
	default:
		return "error"
	}
}

// Action carries one player input. Name selects the operation; the remaining
// fields are interpreted per game:
//   - "choice":  Value is "rock", "paper" or "scissors" (RPS)
//   - "move":    Row/Col address a board cell (Tic-Tac-Toe)
//   - "parity":  Value is "even" or "odd" (Hand Cricket toss)
//   - "tossnum": Number is the toss number 1-6 (Hand Cricket toss)
//   - "batbowl": Value is "bat" or "bowl" (Hand Cricket toss winner)
//   - "number":  Number is the turn number 1-6 (Hand Cricket innings)
type Action struct {
	Name   string
	Value  string
	Row    int
	Col    int
	Number int
}

// Result is the outcome of Machine.Apply. Message is presentation text
// describing what just happened; it is carried for the rendering layer and
// has no bearing on correctness.
type Result struct {
	Status  Status
	Message string
}

// FinalScore describes a finished match for rating settlement. Rated is
// false when a bot took part; bot matches never touch the rating store.
type FinalScore struct {
	WinnerID int64
	LoserID  int64
	Tie      bool
	Rated    bool
}

// Machine is one live match state machine. Implementations are not
// goroutine-safe; the session registry serializes access per session.
type Machine interface {
	// Type returns the game protocol tag.
	Type() Type

	// Players returns the two participants.
	Players() [2]Player

	// Apply validates and applies one player action. It enforces player
	// membership, turn order and move legality, and never mutates state
	// on a rejected action.
	Apply(playerID int64, act Action) Result

	// Over reports whether the match reached a terminal state.
	Over() bool

	// View returns a text snapshot of the current state for rendering.
	View() string

	// Final returns the final score once Over() is true. The second return
	// is false while the match is still in progress.
	Final() (FinalScore, bool)
}
