package handcricket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
)

var (
	alice = game.Player{ID: 1, Username: "alice"}
	bob   = game.Player{ID: 2, Username: "bob"}
)

func newMatch(t *testing.T) *Match {
	t.Helper()
	m, err := NewMatch(alice, bob)
	require.NoError(t, err)
	return m
}

// tossAndBat drives a fresh match through the toss so that alice bats
// first: alice calls odd, numbers 2 and 5 sum to 7 (odd), alice chooses bat.
func tossAndBat(t *testing.T) *Match {
	t.Helper()
	m := newMatch(t)
	require.Equal(t, game.StatusSuccess, m.ChooseParity(alice.ID, ParityOdd))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(alice.ID, 2))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(bob.ID, 5))
	require.Equal(t, alice.ID, m.TossWinner().ID)
	require.Equal(t, game.StatusSuccess, m.ChooseBatBowl(alice.ID, true))
	require.Equal(t, PhaseInning1, m.Phase())
	return m
}

// playTurn submits both numbers for the current turn.
func playTurn(t *testing.T, m *Match, aliceN, bobN int) {
	t.Helper()
	require.NotEqual(t, game.StatusInvalidMove, m.SubmitNumber(alice.ID, aliceN))
	require.NotEqual(t, game.StatusInvalidMove, m.SubmitNumber(bob.ID, bobN))
}

// TestNewMatch_Preconditions tests the pairing rules.
func TestNewMatch_Preconditions(t *testing.T) {
	_, err := NewMatch(alice, alice)
	assert.ErrorIs(t, err, game.ErrSamePlayer)

	bot := game.Player{ID: -1, Username: "bot", IsBot: true}
	_, err = NewMatch(alice, bot)
	assert.ErrorIs(t, err, game.ErrBotNotAllowed)
}

// TestResolveToss tests the pure toss rule at fixed points.
func TestResolveToss(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 int
		call   Parity
		winner int
	}{
		{"sum 7 odd, p1 called odd", 3, 4, ParityOdd, 0},
		{"sum 7 odd, p1 called even", 3, 4, ParityEven, 1},
		{"sum 8 even, p1 called even", 3, 5, ParityEven, 0},
		{"sum 8 even, p1 called odd", 3, 5, ParityOdd, 1},
		{"sum 12 even, p1 called even", 6, 6, ParityEven, 0},
		{"sum 2 even, p1 called odd", 1, 1, ParityOdd, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.winner, ResolveToss(tt.p1, tt.p2, tt.call))
		})
	}
}

// TestToss_CanonicalPreference tests that player2's call is stored
// inverted, so the same numbers produce the mirrored winner.
func TestToss_CanonicalPreference(t *testing.T) {
	// Bob calls odd; canonically player1 holds "even". Sum 7 is odd, so
	// the parity does not match player1's stored call: bob wins.
	m := newMatch(t)
	require.Equal(t, game.StatusSuccess, m.ChooseParity(bob.ID, ParityOdd))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(alice.ID, 3))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(bob.ID, 4))
	assert.Equal(t, bob.ID, m.TossWinner().ID)
}

// TestToss_Rejections tests toss-phase protocol violations.
func TestToss_Rejections(t *testing.T) {
	m := newMatch(t)

	assert.Equal(t, game.StatusNotPlayerInGame, m.ChooseParity(99, ParityOdd))
	assert.Equal(t, game.StatusInvalidMove, m.SubmitTossNumber(alice.ID, 3))

	require.Equal(t, game.StatusSuccess, m.ChooseParity(alice.ID, ParityOdd))

	// Phase advanced after exactly one call; a second call is illegal.
	assert.Equal(t, game.StatusInvalidMove, m.ChooseParity(bob.ID, ParityEven))

	assert.Equal(t, game.StatusInvalidMove, m.SubmitTossNumber(alice.ID, 0))
	assert.Equal(t, game.StatusInvalidMove, m.SubmitTossNumber(alice.ID, 7))

	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(alice.ID, 3))
	assert.Equal(t, game.StatusAlreadyChosen, m.SubmitTossNumber(alice.ID, 5))

	// Bat/bowl before the toss resolves is illegal.
	assert.Equal(t, game.StatusInvalidMove, m.ChooseBatBowl(alice.ID, true))

	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(bob.ID, 4))

	// Sum 7 odd, alice called odd: only alice may choose bat or bowl.
	assert.Equal(t, game.StatusNotPlayerTurn, m.ChooseBatBowl(bob.ID, true))
}

// TestBowlFirst tests that choosing bowl assigns the roles symmetrically.
func TestBowlFirst(t *testing.T) {
	m := newMatch(t)
	require.Equal(t, game.StatusSuccess, m.ChooseParity(alice.ID, ParityOdd))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(alice.ID, 2))
	require.Equal(t, game.StatusSuccess, m.SubmitTossNumber(bob.ID, 5))
	require.Equal(t, game.StatusSuccess, m.ChooseBatBowl(alice.ID, false))

	assert.Equal(t, bob.ID, m.Batter().ID)
	assert.Equal(t, PhaseInning1, m.Phase())
}

// TestTurnResolution tests the out/score rule in inning 1.
func TestTurnResolution(t *testing.T) {
	t.Run("equal numbers always out", func(t *testing.T) {
		m := tossAndBat(t)
		playTurn(t, m, 4, 4)

		assert.Equal(t, PhaseInning2, m.Phase())
		assert.Equal(t, [2]int{0, 0}, m.Scores())
		assert.Equal(t, bob.ID, m.Batter().ID)
	})

	t.Run("unequal numbers add the batter's number", func(t *testing.T) {
		m := tossAndBat(t)
		playTurn(t, m, 4, 2)

		assert.Equal(t, PhaseInning1, m.Phase())
		assert.Equal(t, [2]int{4, 0}, m.Scores())

		playTurn(t, m, 6, 1)
		assert.Equal(t, [2]int{10, 0}, m.Scores())
	})

	t.Run("turn slots reset together", func(t *testing.T) {
		m := tossAndBat(t)
		require.Equal(t, game.StatusSuccess, m.SubmitNumber(alice.ID, 3))
		assert.Equal(t, game.StatusAlreadyChosen, m.SubmitNumber(alice.ID, 5))

		require.Equal(t, game.StatusSuccess, m.SubmitNumber(bob.ID, 2))

		// Both slots cleared: each player may submit again.
		assert.Equal(t, game.StatusSuccess, m.SubmitNumber(alice.ID, 1))
		assert.Equal(t, game.StatusSuccess, m.SubmitNumber(bob.ID, 4))
	})
}

// TestInning2_WicketEndsMatch tests that an inning-2 dismissal ends the
// match regardless of score.
func TestInning2_WicketEndsMatch(t *testing.T) {
	m := tossAndBat(t)
	playTurn(t, m, 4, 2) // alice 4
	playTurn(t, m, 3, 3) // alice out, bob chases 5

	require.Equal(t, PhaseInning2, m.Phase())
	playTurn(t, m, 2, 2) // bob out with 0

	require.True(t, m.Over())
	final, ok := m.Final()
	require.True(t, ok)
	assert.Equal(t, alice.ID, final.WinnerID)
	assert.Equal(t, bob.ID, final.LoserID)
	assert.True(t, final.Rated)
}

// TestInning2_ChaseShortCircuits tests that passing the target ends the
// match immediately, before any further turns.
func TestInning2_ChaseShortCircuits(t *testing.T) {
	m := tossAndBat(t)
	playTurn(t, m, 3, 1) // alice 3
	playTurn(t, m, 5, 5) // alice out, bob chases 4

	require.Equal(t, PhaseInning2, m.Phase())
	playTurn(t, m, 1, 2) // bob 2, not enough
	require.False(t, m.Over())

	// Bob reaches 6 > 3: over immediately even though no wicket fell.
	res := m.SubmitNumber(alice.ID, 1)
	require.Equal(t, game.StatusSuccess, res)
	require.Equal(t, game.StatusGameOver, m.SubmitNumber(bob.ID, 4))

	final, ok := m.Final()
	require.True(t, ok)
	assert.Equal(t, bob.ID, final.WinnerID)

	// No further actions accepted.
	assert.Equal(t, game.StatusInvalidMove, m.SubmitNumber(alice.ID, 3))
}

// TestTie tests the equal-scores outcome.
func TestTie(t *testing.T) {
	m := tossAndBat(t)
	playTurn(t, m, 5, 2) // alice 5
	playTurn(t, m, 1, 1) // out, bob chases 6
	playTurn(t, m, 3, 5) // bob 5
	playTurn(t, m, 4, 4) // bob out at 5: tie

	require.True(t, m.Over())
	final, ok := m.Final()
	require.True(t, ok)
	assert.True(t, final.Tie)
}

// TestEndToEndScenario runs the full scripted match: alice calls odd, toss
// numbers 2 and 5 give an odd sum so alice wins the toss and bats; an
// immediate equal-number turn ends inning 1 with alice on 0 and bob
// chasing 1.
func TestEndToEndScenario(t *testing.T) {
	m := newMatch(t)

	require.Equal(t, game.StatusSuccess, m.Apply(alice.ID, game.Action{Name: "parity", Value: "odd"}).Status)
	require.Equal(t, game.StatusSuccess, m.Apply(alice.ID, game.Action{Name: "tossnum", Number: 2}).Status)
	require.Equal(t, game.StatusSuccess, m.Apply(bob.ID, game.Action{Name: "tossnum", Number: 5}).Status)
	require.Equal(t, alice.ID, m.TossWinner().ID)

	require.Equal(t, game.StatusSuccess, m.Apply(alice.ID, game.Action{Name: "batbowl", Value: "bat"}).Status)
	require.Equal(t, alice.ID, m.Batter().ID)

	// Equal numbers: alice is out with the score unchanged.
	require.Equal(t, game.StatusSuccess, m.Apply(alice.ID, game.Action{Name: "number", Number: 4}).Status)
	res := m.Apply(bob.ID, game.Action{Name: "number", Number: 4})
	require.Equal(t, game.StatusSuccess, res.Status)
	assert.NotEmpty(t, res.Message)

	assert.Equal(t, PhaseInning2, m.Phase())
	assert.Equal(t, [2]int{0, 0}, m.Scores())
	assert.Equal(t, bob.ID, m.Batter().ID)

	// Bob scores a single run: 1 > 0 chases the target of 1 immediately.
	require.Equal(t, game.StatusSuccess, m.Apply(bob.ID, game.Action{Name: "number", Number: 1}).Status)
	require.Equal(t, game.StatusGameOver, m.Apply(alice.ID, game.Action{Name: "number", Number: 2}).Status)

	final, ok := m.Final()
	require.True(t, ok)
	assert.Equal(t, bob.ID, final.WinnerID)
}
