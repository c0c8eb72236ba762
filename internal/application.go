package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/config"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/limiter"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/repository"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-matchmaker/transport/rest"
	"github.com/rocketscienceinc/tictactoe-matchmaker/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	coordinator := usecase.NewCoordinator(logger, hub)
	gameManager := usecase.NewGameManager(logger, coordinator, hub)

	var results repository.ResultRepository

	if conf.Redis.Enabled {
		if conf.Redis.Host == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		results = repository.NewResultRepository(redisStorage.Connection, conf.Results.Limit)
		gameManager.WithResultRecorder(results)
	}

	restServer := rest.New(logger, coordinator, results)

	ipLimiter := limiter.NewIPRateLimiter(logger, rate.Limit(conf.Websocket.Rate), conf.Websocket.Burst)
	wsServer := websocket.New(logger, conf.Websocket, hub, gameManager, ipLimiter)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ipLimiter.Run(ctx)
		return nil
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(ctx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
