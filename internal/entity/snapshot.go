package entity

// PlayerSnapshot is the public view of a participant.
type PlayerSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mark string `json:"mark"`
}

// GameSnapshot is a read-only copy of a game, safe to hand to the transport for encoding.
type GameSnapshot struct {
	ID      string                       `json:"id"`
	PlayerA PlayerSnapshot               `json:"player_a"`
	PlayerB PlayerSnapshot               `json:"player_b"`
	Turn    string                       `json:"turn,omitempty"`
	Board   [BoardSize][BoardSize]string `json:"board"`
	Status  string                       `json:"status"`
	Result  Result                       `json:"result,omitempty"`
	Winner  string                       `json:"winner,omitempty"`
}
