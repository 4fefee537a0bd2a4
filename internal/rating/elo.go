// Package rating implements Elo rating updates for finished matches.
// The functions are pure; reading both pre-update ratings and writing both
// post-update ratings back is the caller's job (see service.MatchService).
package rating

import "math"

const (
	// Initial is the rating assigned to a player's first match in a game.
	Initial = 1000.0

	// DefaultK is the K-factor used when the configured value is not positive.
	DefaultK = 32.0
)

// ExpectedScore returns the probability of the ratingA side winning against
// the ratingB side under the standard Elo logistic curve.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// Update computes the post-match ratings for the winner and the loser.
// For a tie both sides score 0.5; the winner/loser distinction then only
// labels which input maps to which output. Both expectations are computed
// from the pre-update ratings, so the result is order-independent given a
// consistent snapshot of both inputs.
func Update(winner, loser float64, tie bool, k float64) (newWinner, newLoser float64) {
	if k <= 0 {
		k = DefaultK
	}

	expWinner := ExpectedScore(winner, loser)
	expLoser := ExpectedScore(loser, winner)

	scoreWinner, scoreLoser := 1.0, 0.0
	if tie {
		scoreWinner, scoreLoser = 0.5, 0.5
	}

	newWinner = winner + k*(scoreWinner-expWinner)
	newLoser = loser + k*(scoreLoser-expLoser)
	return newWinner, newLoser
}
