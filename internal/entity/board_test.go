package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFilled(board *Board) int {
	filled := 0
	for _, row := range board.Cells() {
		for _, cell := range row {
			if cell != EmptyCell {
				filled++
			}
		}
	}
	return filled
}

func TestBoard_IsValidMove(t *testing.T) {
	t.Run("Accepts every empty cell on the board", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// Then: every in-range cell is a valid move
		for row := range BoardSize {
			for col := range BoardSize {
				assert.True(t, board.IsValidMove(row, col), "cell (%d, %d)", row, col)
			}
		}
	})

	t.Run("Rejects out of range cells", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// Then: coordinates outside 0..2 are rejected
		assert.False(t, board.IsValidMove(-1, 0))
		assert.False(t, board.IsValidMove(0, -1))
		assert.False(t, board.IsValidMove(3, 0))
		assert.False(t, board.IsValidMove(0, 3))
	})

	t.Run("Rejects occupied cell", func(t *testing.T) {
		// Given: a board with X in the center
		board := NewBoard()
		require.NoError(t, board.Place(1, 1, MarkX))

		// Then: the center is no longer a valid move
		assert.False(t, board.IsValidMove(1, 1))
	})
}

func TestBoard_Place(t *testing.T) {
	t.Run("Place on occupied cell leaves board unchanged", func(t *testing.T) {
		// Given: a board with X in the corner
		board := NewBoard()
		require.NoError(t, board.Place(0, 0, MarkX))

		// When: O tries to take the same corner
		err := board.Place(0, 0, MarkO)

		// Then: ErrInvalidMove is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, 1, board.PlacedCount())
		assert.Equal(t, MarkX, board.Cells()[0][0])
	})

	t.Run("Place out of range is rejected", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// When: placing outside the grid
		err := board.Place(5, 1, MarkX)

		// Then: ErrInvalidMove is returned
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, 0, board.PlacedCount())
	})

	t.Run("Placed count always matches filled cells", func(t *testing.T) {
		// Given: a mix of valid and invalid placements
		board := NewBoard()
		moves := [][2]int{{0, 0}, {0, 0}, {1, 1}, {3, 3}, {2, 2}, {1, 1}, {0, 2}, {-1, 2}, {2, 0}}

		for i, move := range moves {
			mark := MarkX
			if i%2 == 1 {
				mark = MarkO
			}

			// When: each placement is attempted
			_ = board.Place(move[0], move[1], mark)

			// Then: the counter never drifts from the grid
			require.Equal(t, countFilled(board), board.PlacedCount())
		}

		assert.Equal(t, 5, board.PlacedCount())
	})
}

func TestBoard_HasThreeInRow(t *testing.T) {
	lines := map[string][3][2]int{
		"top row":       {{0, 0}, {0, 1}, {0, 2}},
		"middle row":    {{1, 0}, {1, 1}, {1, 2}},
		"bottom row":    {{2, 0}, {2, 1}, {2, 2}},
		"left column":   {{0, 0}, {1, 0}, {2, 0}},
		"middle column": {{0, 1}, {1, 1}, {2, 1}},
		"right column":  {{0, 2}, {1, 2}, {2, 2}},
		"main diagonal": {{0, 0}, {1, 1}, {2, 2}},
		"anti diagonal": {{2, 0}, {1, 1}, {0, 2}},
	}

	for name, line := range lines {
		t.Run(name, func(t *testing.T) {
			// Given: three O marks along the line
			board := NewBoard()
			for _, cell := range line {
				require.NoError(t, board.Place(cell[0], cell[1], MarkO))
			}

			// Then: the board reports three in a row
			assert.True(t, board.HasThreeInRow())
		})
	}

	t.Run("Mixed marks are not a line", func(t *testing.T) {
		// Given: a full top row with mixed marks
		board := NewBoard()
		require.NoError(t, board.Place(0, 0, MarkX))
		require.NoError(t, board.Place(0, 1, MarkO))
		require.NoError(t, board.Place(0, 2, MarkX))

		// Then: no line is found
		assert.False(t, board.HasThreeInRow())
	})

	t.Run("Empty board has no line", func(t *testing.T) {
		assert.False(t, NewBoard().HasThreeInRow())
	})
}

func TestBoard_HasSpaceRemaining(t *testing.T) {
	// Given: an empty board
	board := NewBoard()
	marks := []string{MarkX, MarkO}

	// When: filling all but the last cell
	for i := range TotalCells - 1 {
		require.NoError(t, board.Place(i/BoardSize, i%BoardSize, marks[i%2]))
		require.True(t, board.HasSpaceRemaining())
	}

	// Then: the last placement exhausts the board
	require.NoError(t, board.Place(2, 2, MarkX))
	assert.False(t, board.HasSpaceRemaining())
	assert.Equal(t, TotalCells, board.PlacedCount())
}
