package handcricket

import (
	"testing"

	"pgregory.net/rapid"

	"telegram-minigame-bot/internal/game"
)

// TestTossResolutionProperty tests that the toss is a pure function of the
// two numbers and player1's call: player1 wins exactly when the sum's
// parity matches the call.
func TestTossResolutionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p1 := rapid.IntRange(1, 6).Draw(t, "p1Number")
		p2 := rapid.IntRange(1, 6).Draw(t, "p2Number")
		call := Parity(rapid.IntRange(0, 1).Draw(t, "p1Call"))

		winner := ResolveToss(p1, p2, call)

		sumEven := (p1+p2)%2 == 0
		callEven := call == ParityEven
		if sumEven == callEven {
			if winner != 0 {
				t.Fatalf("p1=%d p2=%d call=%s: player1 should win the toss", p1, p2, call)
			}
		} else if winner != 1 {
			t.Fatalf("p1=%d p2=%d call=%s: player2 should win the toss", p1, p2, call)
		}
	})
}

// TestTurnResolutionProperty tests the inning-1 turn rule for any pair of
// numbers: equal numbers always dismiss the batter with no score change,
// unequal numbers always add the batter's number and never dismiss.
func TestTurnResolutionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		batterN := rapid.IntRange(1, 6).Draw(t, "batterN")
		bowlerN := rapid.IntRange(1, 6).Draw(t, "bowlerN")

		m, err := NewMatch(alice, bob)
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}
		m.ChooseParity(alice.ID, ParityOdd)
		m.SubmitTossNumber(alice.ID, 2)
		m.SubmitTossNumber(bob.ID, 5) // sum 7 odd: alice wins the toss
		m.ChooseBatBowl(alice.ID, true)

		if st := m.SubmitNumber(alice.ID, batterN); st != game.StatusSuccess {
			t.Fatalf("batter submit: %v", st)
		}
		if st := m.SubmitNumber(bob.ID, bowlerN); st != game.StatusSuccess {
			t.Fatalf("bowler submit: %v", st)
		}

		if batterN == bowlerN {
			if m.Phase() != PhaseInning2 {
				t.Fatalf("equal numbers %d must dismiss the batter, phase=%v", batterN, m.Phase())
			}
			if m.Scores() != ([2]int{0, 0}) {
				t.Fatalf("dismissal must not score: %v", m.Scores())
			}
		} else {
			if m.Phase() != PhaseInning1 {
				t.Fatalf("unequal numbers must not end the turn as out, phase=%v", m.Phase())
			}
			if m.Scores() != ([2]int{batterN, 0}) {
				t.Fatalf("batter must score %d: %v", batterN, m.Scores())
			}
		}
	})
}

// TestPhaseNeverRegressesProperty drives a match with a random action
// script and checks that the phase sequence only ever moves forward.
func TestPhaseNeverRegressesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, err := NewMatch(alice, bob)
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}

		players := []int64{alice.ID, bob.ID, 99}
		names := []string{"parity", "tossnum", "batbowl", "number", "garbage"}
		values := []string{"even", "odd", "bat", "bowl", ""}

		last := m.Phase()
		steps := rapid.IntRange(10, 80).Draw(t, "steps")
		for i := 0; i < steps && !m.Over(); i++ {
			act := game.Action{
				Name:   names[rapid.IntRange(0, len(names)-1).Draw(t, "name")],
				Value:  values[rapid.IntRange(0, len(values)-1).Draw(t, "value")],
				Number: rapid.IntRange(0, 8).Draw(t, "number"),
			}
			m.Apply(players[rapid.IntRange(0, 2).Draw(t, "player")], act)

			if m.Phase() < last {
				t.Fatalf("phase regressed from %v to %v", last, m.Phase())
			}
			last = m.Phase()
		}
	})
}
