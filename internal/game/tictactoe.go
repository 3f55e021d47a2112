// Package game holds the pure rule engines for the supported game types.
// Engines never touch session bookkeeping: they take a game state, apply one
// action for one role, and report the resulting state and outcome. Rejected
// actions return ErrInvalidMove and leave the input state untouched.
package game

import (
	"errors"

	"gameplatform/internal/model"
)

// ErrInvalidMove rejects an occupied cell, an out-of-range index, a
// malformed choice, or a duplicate roll.
var ErrInvalidMove = errors.New("invalid move")

// winningTriples are the 8 canonical tic-tac-toe lines.
var winningTriples = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// ApplyMove places role's mark at index and evaluates the grid.
func ApplyMove(st model.TicTacToeState, role model.Role, index int) (model.TicTacToeState, model.Outcome, error) {
	if index < 0 || index > 8 {
		return st, model.Outcome{}, ErrInvalidMove
	}
	if st.Grid[index] != "" {
		return st, model.Outcome{}, ErrInvalidMove
	}

	st.Grid[index] = role

	if winner, ok := CheckWinner(st.Grid); ok {
		return st, model.Outcome{Kind: model.OutcomeWin, Winner: winner}, nil
	}
	if gridFull(st.Grid) {
		return st, model.Outcome{Kind: model.OutcomeDraw}, nil
	}
	return st, model.Outcome{Kind: model.OutcomeContinue}, nil
}

// CheckWinner returns the role occupying a full triple, if any.
func CheckWinner(grid [9]model.Role) (model.Role, bool) {
	for _, t := range winningTriples {
		a, b, c := t[0], t[1], t[2]
		if grid[a] != "" && grid[a] == grid[b] && grid[b] == grid[c] {
			return grid[a], true
		}
	}
	return "", false
}

func gridFull(grid [9]model.Role) bool {
	for _, cell := range grid {
		if cell == "" {
			return false
		}
	}
	return true
}
