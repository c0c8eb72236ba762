package entity

import "time"

// MatchResult is what the result log keeps about a finished match.
type MatchResult struct {
	MatchID    string    `json:"match_id"`
	PlayerA    string    `json:"player_a"`
	PlayerB    string    `json:"player_b"`
	Outcome    Result    `json:"outcome"`
	Winner     string    `json:"winner,omitempty"`
	Leaver     string    `json:"leaver,omitempty"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewMatchResult builds the record of a game that has ended. leaver is only used for aborted games.
func NewMatchResult(game *Game, leaver *Player, finishedAt time.Time) *MatchResult {
	snapshot := game.Snapshot()

	result := &MatchResult{
		MatchID:    snapshot.ID,
		PlayerA:    snapshot.PlayerA.Name,
		PlayerB:    snapshot.PlayerB.Name,
		Outcome:    snapshot.Result,
		Winner:     snapshot.Winner,
		Moves:      game.PlacedCount(),
		FinishedAt: finishedAt,
	}

	if snapshot.Result == ResultAborted && leaver != nil {
		result.Leaver = leaver.Name
	}

	return result
}

// Loser is the name of the player who lost an outright win, empty otherwise.
func (that *MatchResult) Loser() string {
	switch that.Winner {
	case "":
		return ""
	case that.PlayerA:
		return that.PlayerB
	default:
		return that.PlayerA
	}
}

type PlayerStats struct {
	Name      string `json:"name"`
	Wins      int64  `json:"wins"`
	Losses    int64  `json:"losses"`
	Ties      int64  `json:"ties"`
	Abandoned int64  `json:"abandoned"`
}
