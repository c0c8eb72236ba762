package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/eapache/queue"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

type groupRegistrar interface {
	AddToGroup(connectionID, groupID string)
}

// RegistryStats is a point-in-time count of what the Coordinator holds.
type RegistryStats struct {
	Players int `json:"players"`
	Waiting int `json:"waiting"`
	Games   int `json:"games"`
}

// Coordinator is the registry of joined players, running games and the waiting queue.
// Every exported method is atomic with respect to all others.
type Coordinator struct {
	logger  *slog.Logger
	groups  groupRegistrar
	newID   func() string
	onMatch func(game *entity.Game)
	onWait  func(player *entity.Player)

	mu      sync.Mutex
	players map[string]*entity.Player // by connection id
	names   map[string]string         // normalized name -> connection id
	games   map[string]*entity.Game
	waiting *queue.Queue
}

func NewCoordinator(logger *slog.Logger, groups groupRegistrar) *Coordinator {
	return &Coordinator{
		logger:  logger.With("component", "coordinator"),
		groups:  groups,
		newID:   uuid.NewString,
		players: make(map[string]*entity.Player),
		names:   make(map[string]string),
		games:   make(map[string]*entity.Game),
		waiting: queue.New(),
	}
}

// OnMatch sets a hook run for every new match while the registry is still locked, so it is
// observed before any teardown of that match. It must not block or call back into the Coordinator.
func (that *Coordinator) OnMatch(hook func(game *entity.Game)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onMatch = hook
}

// OnWait sets a hook run while the registry is locked whenever PairOrEnqueue queues a player,
// so it is observed before that player can be matched.
func (that *Coordinator) OnWait(hook func(player *entity.Player)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onWait = hook
}

func (that *Coordinator) IsNameTaken(name string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.names[entity.NormalizeName(name)]
	return ok
}

// RegisterPlayer creates a player for the connection unless the name is already in use.
// The name check and the insert happen under one lock.
func (that *Coordinator) RegisterPlayer(name, connectionID string) (*entity.Player, error) {
	key := entity.NormalizeName(name)
	if key == "" {
		return nil, apperror.ErrEmptyName
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[connectionID]; ok {
		return nil, fmt.Errorf("%w: connection %s", apperror.ErrAlreadyRegistered, connectionID)
	}

	if _, ok := that.names[key]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNameConflict, name)
	}

	player := entity.NewPlayer(name, connectionID)
	that.players[connectionID] = player
	that.names[key] = connectionID

	return player, nil
}

// DequeueWaitingOpponent pops the oldest live waiting player, or returns nil.
func (that *Coordinator) DequeueWaitingOpponent() *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.dequeue()
}

func (that *Coordinator) EnqueueWaiting(player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.enqueue(player)
}

// CreateMatch starts a game in which playerA moves first.
func (that *Coordinator) CreateMatch(playerA, playerB *entity.Player) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.createMatch(playerA, playerB)
}

// PairOrEnqueue matches player with the oldest waiting opponent, or queues it when nobody waits.
// A nil game means the player is now waiting.
func (that *Coordinator) PairOrEnqueue(player *entity.Player) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.isRegistered(player) {
		return nil, fmt.Errorf("%w: player %s", apperror.ErrNotFound, player.ID)
	}

	opponent := that.dequeue()
	if opponent == nil {
		if err := that.enqueue(player); err != nil {
			return nil, err
		}

		if that.onWait != nil {
			that.onWait(player)
		}

		return nil, nil
	}

	// the opponent was waiting first, so it moves first
	return that.createMatch(opponent, player)
}

func (that *Coordinator) FindPlayerByConnection(connectionID string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.players[connectionID]
}

// FindMatchFor returns the player's running game and its opponent, or nil when there is none.
func (that *Coordinator) FindMatchFor(player *entity.Player) (*entity.Game, *entity.Player) {
	if player == nil {
		return nil, nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !player.InMatch() {
		return nil, nil
	}

	game, ok := that.games[player.MatchID]
	if !ok || !game.Has(player) {
		return nil, nil
	}

	return game, game.Opponent(player)
}

// EndMatch removes the game and both of its players. A game that is still running is aborted.
func (that *Coordinator) EndMatch(matchID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.endMatch(matchID)
}

// Leave drops the connection's player in one step: a waiting player leaves the queue,
// a matched one ends its match. The game is nil when the player was not in one.
func (that *Coordinator) Leave(connectionID string) (*entity.Player, *entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[connectionID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: connection %s", apperror.ErrNotFound, connectionID)
	}

	if !player.InMatch() {
		that.removePlayer(player)
		that.removeWaiting(player)

		return player, nil, nil
	}

	game, err := that.endMatch(player.MatchID)
	if err != nil {
		return nil, nil, err
	}

	return player, game, nil
}

// RemovePlayer drops a player that is not in a match, including from the waiting queue.
func (that *Coordinator) RemovePlayer(connectionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[connectionID]
	if !ok {
		return fmt.Errorf("%w: connection %s", apperror.ErrNotFound, connectionID)
	}

	if player.InMatch() {
		return fmt.Errorf("%w: match %s", apperror.ErrAlreadyInMatch, player.MatchID)
	}

	that.removePlayer(player)
	that.removeWaiting(player)

	return nil
}

func (that *Coordinator) Stats() RegistryStats {
	that.mu.Lock()
	defer that.mu.Unlock()

	return RegistryStats{
		Players: len(that.players),
		Waiting: that.waiting.Length(),
		Games:   len(that.games),
	}
}

func (that *Coordinator) endMatch(matchID string) (*entity.Game, error) {
	game, ok := that.games[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: match %s", apperror.ErrNotFound, matchID)
	}

	game.Abort()
	delete(that.games, matchID)

	for _, player := range []*entity.Player{game.PlayerA, game.PlayerB} {
		that.removePlayer(player)
		player.LeaveMatch()
	}

	return game, nil
}

func (that *Coordinator) isRegistered(player *entity.Player) bool {
	return player != nil && that.players[player.ID] == player
}

func (that *Coordinator) dequeue() *entity.Player {
	for that.waiting.Length() > 0 {
		player, ok := that.waiting.Remove().(*entity.Player)
		if !ok {
			continue
		}

		// players that left while waiting are dropped here if removal missed them
		if !that.isRegistered(player) || player.InMatch() {
			that.logger.Warn("skipping dead waiting player", "method", "dequeue", "playerID", player.ID)
			continue
		}

		return player
	}

	return nil
}

func (that *Coordinator) enqueue(player *entity.Player) error {
	if !that.isRegistered(player) {
		return fmt.Errorf("%w: player %s", apperror.ErrNotFound, player.ID)
	}

	if player.InMatch() {
		return fmt.Errorf("%w: match %s", apperror.ErrAlreadyInMatch, player.MatchID)
	}

	that.waiting.Add(player)

	return nil
}

func (that *Coordinator) createMatch(playerA, playerB *entity.Player) (*entity.Game, error) {
	log := that.logger.With("method", "createMatch")

	for _, player := range []*entity.Player{playerA, playerB} {
		if player.InMatch() {
			log.Error("player is already in a match", "playerID", player.ID, "matchID", player.MatchID)
			return nil, fmt.Errorf("%w: player %s in match %s", apperror.ErrAlreadyInMatch, player.ID, player.MatchID)
		}

		if !that.isRegistered(player) {
			return nil, fmt.Errorf("%w: player %s", apperror.ErrNotFound, player.ID)
		}
	}

	if playerA == playerB {
		return nil, fmt.Errorf("%w: player %s cannot play itself", apperror.ErrAlreadyInMatch, playerA.ID)
	}

	matchID := that.newID()
	game := entity.NewGame(matchID, playerA, playerB)

	that.games[matchID] = game
	playerA.JoinMatch(matchID, entity.MarkX)
	playerB.JoinMatch(matchID, entity.MarkO)

	that.groups.AddToGroup(playerA.ID, matchID)
	that.groups.AddToGroup(playerB.ID, matchID)

	log.Info("match created", "matchID", matchID, "playerA", playerA.Name, "playerB", playerB.Name)

	if that.onMatch != nil {
		that.onMatch(game)
	}

	return game, nil
}

func (that *Coordinator) removePlayer(player *entity.Player) {
	if that.players[player.ID] != player {
		return
	}

	delete(that.players, player.ID)
	delete(that.names, entity.NormalizeName(player.Name))
}

func (that *Coordinator) removeWaiting(player *entity.Player) {
	remaining := queue.New()

	for i := range that.waiting.Length() {
		if waiting, _ := that.waiting.Get(i).(*entity.Player); waiting != player {
			remaining.Add(waiting)
		}
	}

	that.waiting = remaining
}
