package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingField = errors.New("missing field")

func (that *Server) handleJoin(ctx context.Context, c *client, message *Message) error {
	var payload JoinPayload

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.uGame.Join(ctx, c.id, payload.Username); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	return nil
}

func (that *Server) handlePlacePiece(ctx context.Context, c *client, message *Message) error {
	var payload PlacePiecePayload

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Row == nil || payload.Col == nil {
		return fmt.Errorf("%w: row and col are required", errMissingField)
	}

	if err := that.uGame.PlacePiece(ctx, c.id, *payload.Row, *payload.Col); err != nil {
		return fmt.Errorf("failed to place piece: %w", err)
	}

	return nil
}
