package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUpdate_EqualRatings tests the canonical K=32 outcomes for two
// equally rated players.
func TestUpdate_EqualRatings(t *testing.T) {
	t.Run("decisive win", func(t *testing.T) {
		winner, loser := Update(1000, 1000, false, 32)
		assert.InDelta(t, 1016.0, winner, 1e-9)
		assert.InDelta(t, 984.0, loser, 1e-9)
	})

	t.Run("tie leaves ratings unchanged", func(t *testing.T) {
		winner, loser := Update(1000, 1000, true, 32)
		assert.InDelta(t, 1000.0, winner, 1e-9)
		assert.InDelta(t, 1000.0, loser, 1e-9)
	})
}

// TestUpdate_UnequalRatings tests that an upset moves more points than an
// expected result.
func TestUpdate_UnequalRatings(t *testing.T) {
	// Underdog (1000) beats favourite (1400).
	upsetWinner, upsetLoser := Update(1000, 1400, false, 32)

	// Favourite (1400) beats underdog (1000).
	expectedWinner, expectedLoser := Update(1400, 1000, false, 32)

	upsetGain := upsetWinner - 1000
	expectedGain := expectedWinner - 1400

	assert.Greater(t, upsetGain, expectedGain)
	assert.Less(t, upsetLoser, 1400.0)
	assert.Less(t, expectedLoser, 1000.0)
}

// TestExpectedScore tests the logistic expectation at known points.
func TestExpectedScore(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"equal ratings", 1000, 1000, 0.5},
		{"400 points ahead", 1400, 1000, 10.0 / 11.0},
		{"400 points behind", 1000, 1400, 1.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ExpectedScore(tt.a, tt.b), 1e-9)
		})
	}
}

// TestUpdate_DefaultK tests that non-positive K falls back to the default.
func TestUpdate_DefaultK(t *testing.T) {
	w1, l1 := Update(1000, 1000, false, 0)
	w2, l2 := Update(1000, 1000, false, DefaultK)

	assert.Equal(t, w2, w1)
	assert.Equal(t, l2, l1)
}
