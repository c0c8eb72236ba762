package entity

import "strings"

// Player is the identity record of one joined connection.
// MatchID and Mark are only changed by the Coordinator while it holds its lock.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MatchID string `json:"match_id,omitempty"`
	Mark    string `json:"mark,omitempty"`
}

func NewPlayer(name, connectionID string) *Player {
	return &Player{
		ID:   connectionID,
		Name: name,
	}
}

func (that *Player) InMatch() bool {
	return that.MatchID != ""
}

func (that *Player) JoinMatch(matchID, mark string) {
	that.MatchID = matchID
	that.Mark = mark
}

func (that *Player) LeaveMatch() {
	that.MatchID = ""
	that.Mark = ""
}

// NormalizeName is the key used for case-insensitive username uniqueness.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
