package entity

import (
	"sync"
	"testing"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame() (*Game, *Player, *Player) {
	alice := NewPlayer("alice", "conn-a")
	bob := NewPlayer("bob", "conn-b")

	return NewGame("game-1", alice, bob), alice, bob
}

func TestNewGame(t *testing.T) {
	// When: a new game is created
	game, alice, _ := newTestGame()

	// Then: player A moves first and the board is empty
	assert.Same(t, alice, game.WhoseTurn())
	assert.False(t, game.IsOver())
	assert.Equal(t, ResultNone, game.Result())
	assert.Equal(t, 0, game.PlacedCount())

	snapshot := game.Snapshot()
	assert.Equal(t, "game-1", snapshot.ID)
	assert.Equal(t, MarkX, snapshot.PlayerA.Mark)
	assert.Equal(t, MarkO, snapshot.PlayerB.Mark)
	assert.Equal(t, "alice", snapshot.Turn)
	assert.Equal(t, StatusActive, snapshot.Status)
}

func TestGame_MakeMove(t *testing.T) {
	t.Run("Valid move flips the turn", func(t *testing.T) {
		// Given: a new game
		game, alice, bob := newTestGame()

		// When: alice takes the center
		move, err := game.MakeMove(alice, 1, 1)

		// Then: X is placed and it's bob's turn
		require.NoError(t, err)
		assert.Equal(t, Move{Row: 1, Col: 1, Mark: MarkX}, move)
		assert.Same(t, bob, game.WhoseTurn())
		assert.Equal(t, MarkX, game.Snapshot().Board[1][1])
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new game where it's alice's turn
		game, _, bob := newTestGame()

		// When: bob tries to move
		_, err := game.MakeMove(bob, 0, 0)

		// Then: ErrNotYourTurn is returned and the game is unchanged
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, 0, game.PlacedCount())
	})

	t.Run("Error on player from another game", func(t *testing.T) {
		// Given: a new game and a stranger
		game, _, _ := newTestGame()
		stranger := NewPlayer("carol", "conn-c")

		// When: the stranger tries to move
		_, err := game.MakeMove(stranger, 0, 0)

		// Then: ErrNotYourTurn is returned
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: alice has taken a corner
		game, alice, bob := newTestGame()
		_, err := game.MakeMove(alice, 0, 0)
		require.NoError(t, err)

		// When: bob plays the same corner
		_, err = game.MakeMove(bob, 0, 0)

		// Then: ErrInvalidMove is returned and it is still bob's turn
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Same(t, bob, game.WhoseTurn())
		assert.Equal(t, 1, game.PlacedCount())
	})

	t.Run("Error on cell out of range", func(t *testing.T) {
		// Given: a new game
		game, alice, _ := newTestGame()

		// When: alice plays outside the board
		_, err := game.MakeMove(alice, 3, -1)

		// Then: ErrInvalidMove is returned
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Same(t, alice, game.WhoseTurn())
	})
}

func TestGame_Win(t *testing.T) {
	// Given: a new game
	game, alice, bob := newTestGame()

	// When: alice completes the main diagonal
	moves := []struct {
		player   *Player
		row, col int
	}{
		{alice, 0, 0}, {bob, 0, 1}, {alice, 1, 1}, {bob, 1, 2}, {alice, 2, 2},
	}

	var last Move
	for _, m := range moves {
		move, err := game.MakeMove(m.player, m.row, m.col)
		require.NoError(t, err)
		last = move
	}

	// Then: the game is over and alice has won
	assert.Equal(t, ResultWon, last.Result)
	assert.True(t, game.IsOver())
	assert.Equal(t, ResultWon, game.Result())
	assert.Same(t, alice, game.Winner())
	assert.Nil(t, game.WhoseTurn())

	snapshot := game.Snapshot()
	assert.Equal(t, "alice", snapshot.Winner)
	assert.Empty(t, snapshot.Turn)
	assert.Equal(t, StatusOver, snapshot.Status)
}

func TestGame_Tie(t *testing.T) {
	// Given: a new game
	game, alice, bob := newTestGame()

	// When: both players fill the board without a line
	moves := []struct {
		player   *Player
		row, col int
	}{
		{alice, 0, 0}, {bob, 0, 2}, {alice, 0, 1}, {bob, 1, 0}, {alice, 1, 2},
		{bob, 1, 1}, {alice, 2, 0}, {bob, 2, 1}, {alice, 2, 2},
	}

	var last Move
	for i, m := range moves {
		move, err := game.MakeMove(m.player, m.row, m.col)
		require.NoError(t, err)

		if i < len(moves)-1 {
			require.False(t, game.IsOver(), "game ended early at move %d", i)
		}
		last = move
	}

	// Then: the game is tied, not won
	assert.Equal(t, ResultTied, last.Result)
	assert.Equal(t, ResultTied, game.Result())
	assert.Nil(t, game.Winner())
}

func TestGame_MovesAfterOverAreRejected(t *testing.T) {
	t.Run("After a win", func(t *testing.T) {
		// Given: alice has won on the top row
		game, alice, bob := newTestGame()
		for _, cell := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
			mover := game.WhoseTurn()
			_, err := game.MakeMove(mover, cell[0], cell[1])
			require.NoError(t, err)
		}
		require.True(t, game.IsOver())
		before := game.Snapshot()

		// When: both players keep playing
		_, errA := game.MakeMove(alice, 2, 2)
		_, errB := game.MakeMove(bob, 2, 2)
		_, errPlace := game.PlacePiece(2, 2)

		// Then: every move is rejected and nothing changed
		require.ErrorIs(t, errA, apperror.ErrNotYourTurn)
		require.ErrorIs(t, errB, apperror.ErrNotYourTurn)
		require.ErrorIs(t, errPlace, apperror.ErrInvalidMove)
		assert.False(t, game.IsValidMove(2, 2))
		assert.Equal(t, before, game.Snapshot())
	})

	t.Run("After an abort", func(t *testing.T) {
		// Given: a game that has been aborted
		game, alice, _ := newTestGame()
		require.True(t, game.Abort())

		// When: alice tries to move
		_, err := game.MakeMove(alice, 0, 0)

		// Then: the move is rejected and a second abort is a no-op
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.False(t, game.Abort())
		assert.Equal(t, ResultAborted, game.Result())
		assert.Equal(t, 0, game.PlacedCount())
	})
}

func TestGame_Opponent(t *testing.T) {
	game, alice, bob := newTestGame()

	assert.Same(t, bob, game.Opponent(alice))
	assert.Same(t, alice, game.Opponent(bob))
	assert.Nil(t, game.Opponent(NewPlayer("carol", "conn-c")))
	assert.True(t, game.Has(alice))
	assert.False(t, game.Has(nil))
}

func TestGame_ConcurrentMoveAndAbort(t *testing.T) {
	for range 50 {
		// Given: a new game
		game, alice, _ := newTestGame()

		var (
			wg      sync.WaitGroup
			moveErr error
			aborted bool
		)

		// When: a move and an abort race each other
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, moveErr = game.MakeMove(alice, 0, 0)
		}()
		go func() {
			defer wg.Done()
			aborted = game.Abort()
		}()
		wg.Wait()

		// Then: the abort always wins the final state and the move either committed first or was rejected
		require.True(t, aborted)
		require.Equal(t, ResultAborted, game.Result())
		if moveErr == nil {
			require.Equal(t, 1, game.PlacedCount())
		} else {
			require.ErrorIs(t, moveErr, apperror.ErrNotYourTurn)
			require.Equal(t, 0, game.PlacedCount())
		}
	}
}
