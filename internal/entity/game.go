package entity

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
)

const (
	StatusActive = "active"
	StatusOver   = "over"
)

// Result tells how a finished game ended.
type Result string

const (
	ResultNone    Result = ""
	ResultWon     Result = "won"
	ResultTied    Result = "tied"
	ResultAborted Result = "aborted"
)

// Move is a committed placement together with the state it left the game in.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Mark   string `json:"mark"`
	Result Result `json:"-"`
}

// Game is one match between two players. PlayerA always moves first and plays MarkX.
// Every state transition happens under mu, so a move and a forced abort never interleave.
type Game struct {
	ID      string
	PlayerA *Player
	PlayerB *Player

	mu      sync.Mutex
	board   *Board
	turnIsA bool
	status  string
	result  Result
	winner  *Player
}

func NewGame(id string, playerA, playerB *Player) *Game {
	return &Game{
		ID:      id,
		PlayerA: playerA,
		PlayerB: playerB,
		board:   NewBoard(),
		turnIsA: true,
		status:  StatusActive,
	}
}

// WhoseTurn returns the player expected to move, or nil once the game is over.
func (that *Game) WhoseTurn() *Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.whoseTurn()
}

func (that *Game) IsValidMove(row, col int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status == StatusActive && that.board.IsValidMove(row, col)
}

// PlacePiece places the mark of whoever is to move and re-evaluates the game state.
// The caller is expected to have checked the mover already; MakeMove does both at once.
func (that *Game) PlacePiece(row, col int) (Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.placePiece(row, col)
}

// MakeMove validates that player is to move and that the cell is free, then places the piece.
func (that *Game) MakeMove(player *Player, row, col int) (Move, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusActive || that.whoseTurn() != player {
		return Move{}, apperror.ErrNotYourTurn
	}

	return that.placePiece(row, col)
}

// Abort forces the game over without a winner. It reports false if the game had already ended.
func (that *Game) Abort() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status == StatusOver {
		return false
	}

	that.status = StatusOver
	that.result = ResultAborted

	return true
}

func (that *Game) IsOver() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status == StatusOver
}

func (that *Game) Result() Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.result
}

// Winner is nil unless the game ended with three in a row.
func (that *Game) Winner() *Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.winner
}

func (that *Game) PlacedCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board.PlacedCount()
}

// Opponent returns the other participant, or nil if player is not in this game.
func (that *Game) Opponent(player *Player) *Player {
	switch player {
	case that.PlayerA:
		return that.PlayerB
	case that.PlayerB:
		return that.PlayerA
	default:
		return nil
	}
}

func (that *Game) Has(player *Player) bool {
	return player != nil && (player == that.PlayerA || player == that.PlayerB)
}

func (that *Game) Snapshot() GameSnapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot := GameSnapshot{
		ID:      that.ID,
		PlayerA: PlayerSnapshot{ID: that.PlayerA.ID, Name: that.PlayerA.Name, Mark: MarkX},
		PlayerB: PlayerSnapshot{ID: that.PlayerB.ID, Name: that.PlayerB.Name, Mark: MarkO},
		Board:   that.board.Cells(),
		Status:  that.status,
		Result:  that.result,
	}

	if mover := that.whoseTurn(); mover != nil {
		snapshot.Turn = mover.Name
	}

	if that.winner != nil {
		snapshot.Winner = that.winner.Name
	}

	return snapshot
}

func (that *Game) whoseTurn() *Player {
	if that.status != StatusActive {
		return nil
	}

	if that.turnIsA {
		return that.PlayerA
	}

	return that.PlayerB
}

func (that *Game) placePiece(row, col int) (Move, error) {
	if that.status != StatusActive {
		return Move{}, fmt.Errorf("%w: game %s is over", apperror.ErrInvalidMove, that.ID)
	}

	mover, mark := that.PlayerB, MarkO
	if that.turnIsA {
		mover, mark = that.PlayerA, MarkX
	}

	if err := that.board.Place(row, col, mark); err != nil {
		return Move{}, err
	}

	that.turnIsA = !that.turnIsA

	switch {
	case that.board.HasThreeInRow():
		that.status = StatusOver
		that.result = ResultWon
		that.winner = mover
	case !that.board.HasSpaceRemaining():
		that.status = StatusOver
		that.result = ResultTied
	}

	return Move{Row: row, Col: col, Mark: mark, Result: that.result}, nil
}
