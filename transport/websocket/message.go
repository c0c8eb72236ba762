package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

// Message is the wire envelope in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Username string `json:"username"`
}

type PlacePiecePayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type WinnerPayload struct {
	Name string `json:"name"`
}

type GamePayload struct {
	Game *entity.GameSnapshot `json:"game"`
}

// encodeEvent renders an outbound event as a Message.
func encodeEvent(event entity.Event) ([]byte, error) {
	message := Message{Action: event.Action}

	var payload any
	switch {
	case event.Game != nil:
		payload = GamePayload{Game: event.Game}
	case event.Move != nil:
		payload = event.Move
	case event.Action == entity.ActionWinner:
		payload = WinnerPayload{Name: event.Winner}
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event.Action, err)
		}

		message.Payload = raw
	}

	response, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return response, nil
}
