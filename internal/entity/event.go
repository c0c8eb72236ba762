package entity

// Actions sent to clients.
const (
	ActionPlayerJoined   = "playerJoined"
	ActionUsernameTaken  = "usernameTaken"
	ActionWaitingList    = "waitingList"
	ActionNotPlayersTurn = "notPlayersTurn"
	ActionNotValidMove   = "notValidMove"
	ActionStart          = "start"
	ActionPiecePlaced    = "piecePlaced"
	ActionUpdateTurn     = "updateTurn"
	ActionTieGame        = "tieGame"
	ActionWinner         = "winner"
	ActionOpponentLeft   = "opponentLeft"
)

// Event is an outbound notification. Only the fields relevant to Action are set.
type Event struct {
	Action string        `json:"-"`
	Game   *GameSnapshot `json:"game,omitempty"`
	Move   *Move         `json:"move,omitempty"`
	Winner string        `json:"winner,omitempty"`
}

func NewEvent(action string) Event {
	return Event{Action: action}
}

func GameEvent(action string, snapshot GameSnapshot) Event {
	return Event{Action: action, Game: &snapshot}
}

func PiecePlacedEvent(move Move) Event {
	return Event{Action: ActionPiecePlaced, Move: &move}
}

func WinnerEvent(name string) Event {
	return Event{Action: ActionWinner, Winner: name}
}
