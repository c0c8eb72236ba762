package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type registry interface {
	Stats() usecase.RegistryStats
}

type resultLog interface {
	Recent(ctx context.Context, limit int) ([]*entity.MatchResult, error)
	Stats(ctx context.Context, name string) (*entity.PlayerStats, error)
}

type Server struct {
	logger   *slog.Logger
	registry registry
	results  resultLog
}

// New builds the REST API. results may be nil when the result log is disabled.
func New(logger *slog.Logger, registry registry, results resultLog) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		registry: registry,
		results:  results,
	}
}

func (that *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.pingHandler)
	router.Get("/health", that.healthHandler)
	router.Get("/stats/{name}", that.statsHandler)
	router.Get("/results", that.resultsHandler)

	return router
}

// Start - starts HTTP server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
