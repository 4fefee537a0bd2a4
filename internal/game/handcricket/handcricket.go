// Package handcricket implements the multi-phase Hand Cricket match state
// machine: a parity toss decides who bats first, then two innings are played
// where matching numbers dismiss the batter and non-matching numbers score
// runs for the batter.
package handcricket

import (
	"fmt"
	"strings"

	"telegram-minigame-bot/internal/game"
)

// Phase is the current stage of a match. Phases only ever advance forward.
type Phase int

const (
	PhaseTossEvenOdd Phase = iota
	PhaseTossNumber
	PhaseTossBatBowl
	PhaseInning1
	PhaseInning2
	PhaseGameOver
)

// String returns a short identifier for logging.
func (p Phase) String() string {
	switch p {
	case PhaseTossEvenOdd:
		return "toss_even_odd"
	case PhaseTossNumber:
		return "toss_number"
	case PhaseTossBatBowl:
		return "toss_bat_bowl"
	case PhaseInning1:
		return "inning1"
	case PhaseInning2:
		return "inning2"
	default:
		return "game_over"
	}
}

// Parity is an even/odd call.
type Parity int

const (
	ParityEven Parity = iota
	ParityOdd
)

// String returns the lowercase name of the parity.
func (p Parity) String() string {
	if p == ParityOdd {
		return "odd"
	}
	return "even"
}

const (
	minNumber = 1
	maxNumber = 6
)

// Match is one Hand Cricket game between two human players. Slot indexes
// into the players array are used throughout; 0 is "player1" for the
// canonical toss preference. Not goroutine-safe; the session registry
// serializes access.
type Match struct {
	players [2]game.Player
	phase   Phase

	// Toss sub-state. p1Parity is stored canonically as player1's call
	// even when player2 made it.
	p1Parity    Parity
	tossNumbers [2]int // 0 = unset
	tossWinner  int    // slot index, valid from PhaseTossBatBowl on

	batter int // slot index of the current batter
	bowler int // slot index of the current bowler
	scores [2]int
	inning int // 0 or 1

	// Per-turn number slots, cleared together after each resolved turn.
	turnNumbers [2]int // 0 = unset
	lastTurn    [2]int // previous turn's numbers, kept for display

	// message describes the latest transition for the rendering layer.
	// It is replaced wholesale on every phase transition.
	message string
}

// NewMatch creates a match between two human players.
func NewMatch(p1, p2 game.Player) (*Match, error) {
	if p1.ID == p2.ID {
		return nil, game.ErrSamePlayer
	}
	if p1.IsBot || p2.IsBot {
		return nil, game.ErrBotNotAllowed
	}
	return &Match{
		players: [2]game.Player{p1, p2},
		phase:   PhaseTossEvenOdd,
		message: "Toss time! Either player calls even or odd.",
	}, nil
}

// Type returns the game protocol tag.
func (m *Match) Type() game.Type {
	return game.TypeHandCricket
}

// Players returns the two participants.
func (m *Match) Players() [2]game.Player {
	return m.players
}

// Phase returns the current phase.
func (m *Match) Phase() Phase {
	return m.phase
}

// Scores returns both players' running scores by slot index.
func (m *Match) Scores() [2]int {
	return m.scores
}

// TossWinner returns the toss winner, valid once the toss is resolved.
func (m *Match) TossWinner() game.Player {
	return m.players[m.tossWinner]
}

// Batter returns the current batter.
func (m *Match) Batter() game.Player {
	return m.players[m.batter]
}

// slot returns the player's index, or -1 for a non-participant.
func (m *Match) slot(playerID int64) int {
	for i, p := range m.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// ChooseParity records the even/odd call in the toss. The first player to
// act decides for both: the call is stored as player1's preference
// (inverted when player2 made it) and the phase advances unconditionally.
func (m *Match) ChooseParity(playerID int64, p Parity) game.Status {
	idx := m.slot(playerID)
	if idx < 0 {
		return game.StatusNotPlayerInGame
	}
	if m.phase != PhaseTossEvenOdd {
		return game.StatusInvalidMove
	}

	if idx == 0 {
		m.p1Parity = p
	} else {
		m.p1Parity = 1 - p
	}
	m.phase = PhaseTossNumber
	m.message = fmt.Sprintf("@%s called %s. Both players now pick a toss number (1-6).",
		m.players[idx].Username, p)
	return game.StatusSuccess
}

// SubmitTossNumber records one player's toss number. Once both numbers are
// in, the toss resolves: the parity of their sum against player1's stored
// call decides the toss winner.
func (m *Match) SubmitTossNumber(playerID int64, n int) game.Status {
	idx := m.slot(playerID)
	if idx < 0 {
		return game.StatusNotPlayerInGame
	}
	if m.phase != PhaseTossNumber {
		return game.StatusInvalidMove
	}
	if n < minNumber || n > maxNumber {
		return game.StatusInvalidMove
	}
	if m.tossNumbers[idx] != 0 {
		return game.StatusAlreadyChosen
	}

	m.tossNumbers[idx] = n
	if m.tossNumbers[0] == 0 || m.tossNumbers[1] == 0 {
		m.message = fmt.Sprintf("@%s picked a toss number. Waiting for the other player.",
			m.players[idx].Username)
		return game.StatusSuccess
	}

	m.tossWinner = ResolveToss(m.tossNumbers[0], m.tossNumbers[1], m.p1Parity)
	m.phase = PhaseTossBatBowl
	sum := m.tossNumbers[0] + m.tossNumbers[1]
	m.message = fmt.Sprintf("%d + %d = %d (%s). @%s wins the toss! Bat or bowl?",
		m.tossNumbers[0], m.tossNumbers[1], sum, sumParity(sum), m.TossWinner().Username)
	return game.StatusSuccess
}

// ChooseBatBowl records the toss winner's decision and starts inning 1.
// Only the toss winner may act.
func (m *Match) ChooseBatBowl(playerID int64, bat bool) game.Status {
	idx := m.slot(playerID)
	if idx < 0 {
		return game.StatusNotPlayerInGame
	}
	if m.phase != PhaseTossBatBowl {
		return game.StatusInvalidMove
	}
	if idx != m.tossWinner {
		return game.StatusNotPlayerTurn
	}

	if bat {
		m.batter, m.bowler = m.tossWinner, 1-m.tossWinner
	} else {
		m.batter, m.bowler = 1-m.tossWinner, m.tossWinner
	}
	m.phase = PhaseInning1
	m.inning = 0
	m.message = fmt.Sprintf("@%s bats first, @%s bowls. Both players pick a number (1-6) each turn.",
		m.Batter().Username, m.players[m.bowler].Username)
	return game.StatusSuccess
}

// SubmitNumber records one player's number for the current turn of either
// inning. Once both numbers are in, the turn resolves: equal numbers
// dismiss the batter, unequal numbers add the batter's number to their
// score. In inning 2 the match can also end mid-turn-sequence as soon as
// the chasing batter passes the target.
func (m *Match) SubmitNumber(playerID int64, n int) game.Status {
	idx := m.slot(playerID)
	if idx < 0 {
		return game.StatusNotPlayerInGame
	}
	if m.phase != PhaseInning1 && m.phase != PhaseInning2 {
		return game.StatusInvalidMove
	}
	if n < minNumber || n > maxNumber {
		return game.StatusInvalidMove
	}
	if m.turnNumbers[idx] != 0 {
		return game.StatusAlreadyChosen
	}

	m.turnNumbers[idx] = n
	if m.turnNumbers[0] == 0 || m.turnNumbers[1] == 0 {
		m.message = fmt.Sprintf("@%s played. Waiting for the other player.", m.players[idx].Username)
		return game.StatusSuccess
	}

	m.resolveTurn()
	if m.phase == PhaseGameOver {
		return game.StatusGameOver
	}
	return game.StatusSuccess
}

// resolveTurn consumes both turn slots and applies the inning rules. The
// slots are always reset together, never one at a time.
func (m *Match) resolveTurn() {
	batterN := m.turnNumbers[m.batter]
	bowlerN := m.turnNumbers[m.bowler]
	m.lastTurn = m.turnNumbers
	m.turnNumbers = [2]int{}

	out := batterN == bowlerN
	if !out {
		m.scores[m.batter] += batterN
	}

	if m.phase == PhaseInning1 {
		if out {
			// Swap roles; the chase target is the first inning score + 1.
			m.batter, m.bowler = m.bowler, m.batter
			m.phase = PhaseInning2
			m.inning = 1
			m.message = fmt.Sprintf("🏏 OUT! %d = %d. @%s now bats, chasing %d.",
				batterN, bowlerN, m.Batter().Username, m.scores[m.bowler]+1)
		} else {
			m.message = fmt.Sprintf("@%s scores %d (total %d).",
				m.Batter().Username, batterN, m.scores[m.batter])
		}
		return
	}

	// Inning 2.
	if out {
		m.phase = PhaseGameOver
		m.message = fmt.Sprintf("🏏 OUT! %d = %d. ", batterN, bowlerN) + m.finalMessage()
		return
	}
	if m.scores[m.batter] > m.scores[m.bowler] {
		// Target chased down; the match ends immediately.
		m.phase = PhaseGameOver
		m.message = "🎯 Target chased! " + m.finalMessage()
		return
	}
	m.message = fmt.Sprintf("@%s scores %d (total %d, target %d).",
		m.Batter().Username, batterN, m.scores[m.batter], m.scores[m.bowler]+1)
}

// finalMessage renders the result line by comparing accumulated scores.
func (m *Match) finalMessage() string {
	switch {
	case m.scores[0] > m.scores[1]:
		return fmt.Sprintf("@%s wins %d-%d!", m.players[0].Username, m.scores[0], m.scores[1])
	case m.scores[1] > m.scores[0]:
		return fmt.Sprintf("@%s wins %d-%d!", m.players[1].Username, m.scores[1], m.scores[0])
	default:
		return fmt.Sprintf("It's a tie at %d!", m.scores[0])
	}
}

// Over reports whether the match reached GameOver.
func (m *Match) Over() bool {
	return m.phase == PhaseGameOver
}

// Apply implements game.Machine.
func (m *Match) Apply(playerID int64, act game.Action) game.Result {
	var status game.Status
	switch act.Name {
	case "parity":
		switch strings.ToLower(act.Value) {
		case "even":
			status = m.ChooseParity(playerID, ParityEven)
		case "odd":
			status = m.ChooseParity(playerID, ParityOdd)
		default:
			status = game.StatusInvalidMove
		}
	case "tossnum":
		status = m.SubmitTossNumber(playerID, act.Number)
	case "batbowl":
		switch strings.ToLower(act.Value) {
		case "bat":
			status = m.ChooseBatBowl(playerID, true)
		case "bowl":
			status = m.ChooseBatBowl(playerID, false)
		default:
			status = game.StatusInvalidMove
		}
	case "number":
		status = m.SubmitNumber(playerID, act.Number)
	default:
		status = game.StatusInvalidMove
	}

	res := game.Result{Status: status}
	if status == game.StatusSuccess || status == game.StatusGameOver {
		res.Message = m.message
	}
	return res
}

// Final implements game.Machine. The result only compares accumulated
// scores; how the match ended (wicket or chase) does not matter.
func (m *Match) Final() (game.FinalScore, bool) {
	if m.phase != PhaseGameOver {
		return game.FinalScore{}, false
	}
	switch {
	case m.scores[0] > m.scores[1]:
		return game.FinalScore{WinnerID: m.players[0].ID, LoserID: m.players[1].ID, Rated: true}, true
	case m.scores[1] > m.scores[0]:
		return game.FinalScore{WinnerID: m.players[1].ID, LoserID: m.players[0].ID, Rated: true}, true
	default:
		return game.FinalScore{Tie: true, Rated: true}, true
	}
}

// View returns a text snapshot for the rendering layer.
func (m *Match) View() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏏 Hand Cricket: @%s %d — %d @%s\n",
		m.players[0].Username, m.scores[0], m.scores[1], m.players[1].Username)
	if m.lastTurn != ([2]int{}) {
		fmt.Fprintf(&sb, "Last turn: %d / %d\n", m.lastTurn[0], m.lastTurn[1])
	}
	sb.WriteString(m.message)
	return sb.String()
}

// ResolveToss is the pure toss rule: player1 (slot 0) wins when the parity
// of the summed numbers matches player1's stored call, else player2 wins.
func ResolveToss(p1Number, p2Number int, p1Call Parity) int {
	sum := p1Number + p2Number
	even := sum%2 == 0
	if (even && p1Call == ParityEven) || (!even && p1Call == ParityOdd) {
		return 0
	}
	return 1
}

func sumParity(sum int) string {
	if sum%2 == 0 {
		return "even"
	}
	return "odd"
}
