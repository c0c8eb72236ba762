package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 64
)

// client is one websocket connection. readPump and writePump are its only goroutines.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newClient(logger *slog.Logger, id string, conn *websocket.Conn) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With("connectionID", id),
	}
}

// enqueue must be called with the hub lock held so it never races the channel close.
func (that *client) enqueue(message []byte) {
	select {
	case that.send <- message:
	default:
		that.logger.Warn("send queue full, dropping message", "queued", len(that.send))
	}
}

// readPump decodes inbound messages until the connection fails, then hands them to dispatch in order.
func (that *client) readPump(ctx context.Context, dispatch func(ctx context.Context, c *client, message *Message)) {
	log := that.logger.With("method", "readPump")

	that.conn.SetReadLimit(maxMessageSize)

	if err := that.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}

	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("connection closed unexpectedly", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			continue
		}

		dispatch(ctx, that, &message)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (that *client) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := that.conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-that.send:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline on ping", "error", err)
				return
			}

			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}
		}
	}
}
