// Package tictactoe implements the Tic-Tac-Toe match state machine and the
// exhaustive minimax bot that backs the non-human side.
package tictactoe

// Mark is one cell's content. The numeric values double as minimax scores:
// an O win scores +1, an X win -1, so O is the maximizer and X the minimizer.
type Mark int

const (
	Empty Mark = 0
	O     Mark = 1
	X     Mark = -1
)

// Symbol returns the display symbol for a mark.
func (m Mark) Symbol() string {
	switch m {
	case X:
		return "❌"
	case O:
		return "⭕"
	default:
		return "▫️"
	}
}

// Board is the 3x3 grid. The zero value is an empty board.
type Board [3][3]Mark

// InRange reports whether (row, col) addresses a cell.
func InRange(row, col int) bool {
	return row >= 0 && row < 3 && col >= 0 && col < 3
}

// Winner scans rows, columns and both diagonals and returns the winning
// mark, or Empty when no line is complete. The scan is independent of any
// incremental bookkeeping kept by the match.
func (b *Board) Winner() Mark {
	for i := 0; i < 3; i++ {
		if b[i][0] != Empty && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return b[i][0]
		}
		if b[0][i] != Empty && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return b[0][i]
		}
	}
	if b[1][1] != Empty {
		if b[0][0] == b[1][1] && b[1][1] == b[2][2] {
			return b[1][1]
		}
		if b[0][2] == b[1][1] && b[1][1] == b[2][0] {
			return b[1][1]
		}
	}
	return Empty
}

// Full reports whether every cell is marked.
func (b *Board) Full() bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] == Empty {
				return false
			}
		}
	}
	return true
}

// MoveCount returns the number of non-empty cells.
func (b Board) MoveCount() int {
	n := 0
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] != Empty {
				n++
			}
		}
	}
	return n
}
