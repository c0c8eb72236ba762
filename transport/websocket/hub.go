package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

// Hub tracks open connections and the match groups they belong to.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	connections map[string]*client
	groups      map[string]map[string]struct{} // group id -> connection ids
	memberships map[string]map[string]struct{} // connection id -> group ids
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "hub"),
		connections: make(map[string]*client),
		groups:      make(map[string]map[string]struct{}),
		memberships: make(map[string]map[string]struct{}),
	}
}

func (that *Hub) AddToGroup(connectionID, groupID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.connections[connectionID]; !ok {
		that.logger.Debug("group add for closed connection ignored", "connectionID", connectionID, "groupID", groupID)
		return
	}

	if that.groups[groupID] == nil {
		that.groups[groupID] = make(map[string]struct{})
	}
	that.groups[groupID][connectionID] = struct{}{}

	if that.memberships[connectionID] == nil {
		that.memberships[connectionID] = make(map[string]struct{})
	}
	that.memberships[connectionID][groupID] = struct{}{}
}

func (that *Hub) SendTo(connectionID string, event entity.Event) {
	message, err := encodeEvent(event)
	if err != nil {
		that.logger.Error("failed to encode event", "action", event.Action, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if c, ok := that.connections[connectionID]; ok {
		c.enqueue(message)
	}
}

func (that *Hub) Broadcast(groupID string, event entity.Event) {
	message, err := encodeEvent(event)
	if err != nil {
		that.logger.Error("failed to encode event", "action", event.Action, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for connectionID := range that.groups[groupID] {
		if c, ok := that.connections[connectionID]; ok {
			c.enqueue(message)
		}
	}
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.connections)
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[c.id] = c
}

// unregister drops the connection from every group and closes its send queue. It reports false if already done.
func (that *Hub) unregister(c *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.connections[c.id] != c {
		return false
	}

	delete(that.connections, c.id)

	for groupID := range that.memberships[c.id] {
		delete(that.groups[groupID], c.id)
		if len(that.groups[groupID]) == 0 {
			delete(that.groups, groupID)
		}
	}
	delete(that.memberships, c.id)

	close(c.send)

	return true
}

// closeAll closes every open connection. Their read pumps then run the usual cleanup.
func (that *Hub) closeAll() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.connections {
		if err := c.conn.Close(); err != nil {
			that.logger.Debug("failed to close connection", "connectionID", c.id, "error", err)
		}
	}
}
