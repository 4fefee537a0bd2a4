package tictactoe

import "math/rand"

// GetBestMove selects the move for side on the given board using an
// exhaustive minimax search. On an empty board it picks uniformly at random
// among all nine cells: minimax would otherwise always open in the same
// corner, and every opening is equally drawn under optimal play. Score ties
// are broken first-seen in row-major order. If no move comes out of the
// search despite the board not being full, a uniformly random empty cell is
// returned as a fallback.
func GetBestMove(b *Board, side Mark) (row, col int) {
	if b.MoveCount() == 0 {
		return rand.Intn(3), rand.Intn(3)
	}

	bestRow, bestCol := -1, -1
	bestScore := 0
	found := false

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] != Empty {
				continue
			}
			b[r][c] = side
			score := minimax(b, opponent(side))
			b[r][c] = Empty

			better := !found
			if found {
				if side == O {
					better = score > bestScore
				} else {
					better = score < bestScore
				}
			}
			if better {
				bestScore = score
				bestRow, bestCol = r, c
				found = true
			}
		}
	}

	if !found {
		return randomEmptyCell(b)
	}
	return bestRow, bestCol
}

// minimax scores the position with the given side to move by simulating
// optimal alternating play to the end of the game. O maximizes, X minimizes;
// terminal positions score as the winning mark's numeric value, ties as 0.
// The 3x3 tree is small enough that no depth limit or pruning is needed.
func minimax(b *Board, turn Mark) int {
	if w := b.Winner(); w != Empty {
		return int(w)
	}
	if b.Full() {
		return 0
	}

	var best int
	first := true
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] != Empty {
				continue
			}
			b[r][c] = turn
			score := minimax(b, opponent(turn))
			b[r][c] = Empty

			if first || (turn == O && score > best) || (turn == X && score < best) {
				best = score
				first = false
			}
		}
	}
	return best
}

func opponent(m Mark) Mark {
	if m == X {
		return O
	}
	return X
}

func randomEmptyCell(b *Board) (int, int) {
	type cell struct{ r, c int }
	empty := make([]cell, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] == Empty {
				empty = append(empty, cell{r, c})
			}
		}
	}
	if len(empty) == 0 {
		return -1, -1
	}
	pick := empty[rand.Intn(len(empty))]
	return pick.r, pick.c
}
