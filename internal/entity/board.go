package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
)

const (
	BoardSize  = 3
	TotalCells = BoardSize * BoardSize

	MarkX     = "X"
	MarkO     = "O"
	EmptyCell = ""
)

// Board is a 3x3 tic-tac-toe grid. It is owned by exactly one Game and is not safe for concurrent use on its own.
type Board struct {
	cells  [BoardSize][BoardSize]string
	placed int
}

func NewBoard() *Board {
	return &Board{}
}

// IsValidMove reports whether (row, col) is on the board and still empty.
func (that *Board) IsValidMove(row, col int) bool {
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return false
	}

	return that.cells[row][col] == EmptyCell
}

// Place puts mark into (row, col). The board is left untouched when the move is not valid.
func (that *Board) Place(row, col int, mark string) error {
	if !that.IsValidMove(row, col) {
		return fmt.Errorf("%w: cell (%d, %d)", apperror.ErrInvalidMove, row, col)
	}

	if mark == EmptyCell {
		return fmt.Errorf("%w: empty mark", apperror.ErrInvalidMove)
	}

	that.cells[row][col] = mark
	that.placed++

	return nil
}

// HasThreeInRow checks the 3 rows, 3 columns and both diagonals.
func (that *Board) HasThreeInRow() bool {
	for i := range BoardSize {
		if that.sameMark(that.cells[i][0], that.cells[i][1], that.cells[i][2]) {
			return true
		}

		if that.sameMark(that.cells[0][i], that.cells[1][i], that.cells[2][i]) {
			return true
		}
	}

	return that.sameMark(that.cells[0][0], that.cells[1][1], that.cells[2][2]) ||
		that.sameMark(that.cells[2][0], that.cells[1][1], that.cells[0][2])
}

func (that *Board) HasSpaceRemaining() bool {
	return that.placed < TotalCells
}

func (that *Board) PlacedCount() int {
	return that.placed
}

// Cells returns a copy of the grid.
func (that *Board) Cells() [BoardSize][BoardSize]string {
	return that.cells
}

func (that *Board) sameMark(a, b, c string) bool {
	return a != EmptyCell && a == b && b == c
}
