package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

const recordTimeout = 3 * time.Second

type notifier interface {
	SendTo(connectionID string, event entity.Event)
	Broadcast(groupID string, event entity.Event)
}

// ResultRecorder stores finished matches. It is optional.
type ResultRecorder interface {
	Save(ctx context.Context, result *entity.MatchResult) error
}

// GameManager runs the join, move and disconnect flows on top of the Coordinator.
type GameManager struct {
	logger      *slog.Logger
	coordinator *Coordinator
	notifier    notifier
	results     ResultRecorder
	now         func() time.Time
}

func NewGameManager(logger *slog.Logger, coordinator *Coordinator, notifier notifier) *GameManager {
	manager := &GameManager{
		logger:      logger.With("component", "game_manager"),
		coordinator: coordinator,
		notifier:    notifier,
		now:         time.Now,
	}

	coordinator.OnMatch(manager.announceStart)
	coordinator.OnWait(manager.announceWaiting)

	return manager
}

// WithResultRecorder enables recording of finished matches.
func (that *GameManager) WithResultRecorder(results ResultRecorder) *GameManager {
	that.results = results
	return that
}

// Join registers a player for the connection and either pairs it with the oldest waiting player or queues it.
func (that *GameManager) Join(ctx context.Context, connectionID, username string) error {
	log := that.logger.With("method", "Join", "connectionID", connectionID)

	player, err := that.coordinator.RegisterPlayer(username, connectionID)
	if errors.Is(err, apperror.ErrNameConflict) || errors.Is(err, apperror.ErrEmptyName) {
		that.notifier.SendTo(connectionID, entity.NewEvent(entity.ActionUsernameTaken))
		return err
	}

	if err != nil {
		return fmt.Errorf("failed to register player: %w", err)
	}

	that.notifier.SendTo(connectionID, entity.NewEvent(entity.ActionPlayerJoined))

	game, err := that.coordinator.PairOrEnqueue(player)
	if errors.Is(err, apperror.ErrNotFound) {
		log.Debug("player left before matchmaking", "player", player.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to find opponent: %w", err)
	}

	if game == nil {
		log.Info("player is waiting for an opponent", "player", player.Name)
		return nil
	}

	log.Info("match started", "matchID", game.ID, "playerA", game.PlayerA.Name, "playerB", game.PlayerB.Name)

	return nil
}

// PlacePiece applies a move from the connection's player and announces the outcome to the match.
func (that *GameManager) PlacePiece(ctx context.Context, connectionID string, row, col int) error {
	log := that.logger.With("method", "PlacePiece", "connectionID", connectionID)

	player := that.coordinator.FindPlayerByConnection(connectionID)
	if player == nil {
		log.Debug("move from unknown player ignored")
		return nil
	}

	game, _ := that.coordinator.FindMatchFor(player)
	if game == nil {
		that.notifier.SendTo(connectionID, entity.NewEvent(entity.ActionNotPlayersTurn))
		return fmt.Errorf("%w: player %s has no active match", apperror.ErrNotYourTurn, player.Name)
	}

	move, err := game.MakeMove(player, row, col)
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		that.notifier.SendTo(connectionID, entity.NewEvent(entity.ActionNotPlayersTurn))
		return err
	case errors.Is(err, apperror.ErrInvalidMove):
		that.notifier.SendTo(connectionID, entity.NewEvent(entity.ActionNotValidMove))
		return err
	case err != nil:
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.notifier.Broadcast(game.ID, entity.PiecePlacedEvent(move))

	switch move.Result {
	case entity.ResultTied:
		that.notifier.Broadcast(game.ID, entity.NewEvent(entity.ActionTieGame))
	case entity.ResultWon:
		that.notifier.Broadcast(game.ID, entity.WinnerEvent(player.Name))
	default:
		that.notifier.Broadcast(game.ID, entity.GameEvent(entity.ActionUpdateTurn, game.Snapshot()))
		return nil
	}

	log.Info("match finished", "matchID", game.ID, "result", move.Result)
	that.finishMatch(ctx, game.ID)

	return nil
}

// Disconnect tears down whatever the connection's player was part of.
func (that *GameManager) Disconnect(ctx context.Context, connectionID string) {
	log := that.logger.With("method", "Disconnect", "connectionID", connectionID)

	player, game, err := that.coordinator.Leave(connectionID)
	if err != nil {
		log.Debug("player already removed", "error", err)
		return
	}

	if game == nil {
		log.Info("waiting player left", "player", player.Name)
		return
	}

	// a game that reached a result on its own has already told both players
	if game.Result() == entity.ResultAborted {
		that.notifier.Broadcast(game.ID, entity.NewEvent(entity.ActionOpponentLeft))
		log.Info("player left running match", "player", player.Name, "matchID", game.ID)
	}

	that.recordResult(ctx, entity.NewMatchResult(game, player, that.now()))
}

func (that *GameManager) announceWaiting(player *entity.Player) {
	that.notifier.SendTo(player.ID, entity.NewEvent(entity.ActionWaitingList))
}

// announceStart runs under the registry lock, so start always reaches the group before opponentLeft.
func (that *GameManager) announceStart(game *entity.Game) {
	that.notifier.Broadcast(game.ID, entity.GameEvent(entity.ActionStart, game.Snapshot()))
}

func (that *GameManager) Stats() RegistryStats {
	return that.coordinator.Stats()
}

// finishMatch ends a match that reached a result and records it. Nothing happens if another flow ended it first.
func (that *GameManager) finishMatch(ctx context.Context, matchID string) {
	log := that.logger.With("method", "finishMatch", "matchID", matchID)

	game, err := that.coordinator.EndMatch(matchID)
	if errors.Is(err, apperror.ErrNotFound) {
		log.Debug("match already ended")
		return
	}

	if err != nil {
		log.Error("failed to end match", "error", err)
		return
	}

	that.recordResult(ctx, entity.NewMatchResult(game, nil, that.now()))
}

// recordResult runs after the players have been notified, so a slow result log only delays this connection.
func (that *GameManager) recordResult(ctx context.Context, result *entity.MatchResult) {
	if that.results == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := that.results.Save(ctx, result); err != nil {
		that.logger.Error("failed to record match result", "matchID", result.MatchID, "error", err)
	}
}
