package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/config"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/limiter"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	Join(ctx context.Context, connectionID, username string) error
	PlacePiece(ctx context.Context, connectionID string, row, col int) error
	Disconnect(ctx context.Context, connectionID string)
}

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	uGame    uGame
	limiter  *limiter.IPRateLimiter
	upgrader websocket.Upgrader
	conf     config.Websocket

	handlers map[string]func(ctx context.Context, c *client, message *Message) error
}

func New(logger *slog.Logger, conf config.Websocket, hub *Hub, uGame uGame, ipLimiter *limiter.IPRateLimiter) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		hub:     hub,
		uGame:   uGame,
		limiter: ipLimiter,
		conf:    conf,

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	server.handlers["join"] = server.handleJoin
	server.handlers["placePiece"] = server.handlePlacePiece

	return server
}

// Handler serves the websocket endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	router := chi.NewRouter()

	router.Use(that.cors().Handler)
	router.Use(middleware.Recoverer)

	router.With(that.limiter.Middleware).Get("/ws", func(writer http.ResponseWriter, req *http.Request) {
		that.upgradeToWebSocket(ctx, writer, req)
	})

	return router
}

// Start - starts WebSocket server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}

		// hijacked connections are not closed by Shutdown
		that.hub.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.logger, uuid.NewString(), conn)
	that.hub.register(c)

	log.Info("websocket connection established", "connectionID", c.id, "ip", limiter.ClientIP(req))

	go c.writePump()

	c.readPump(ctx, that.dispatch)

	that.closeClient(ctx, c)
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) {
	log := that.logger.With("method", "dispatch", "connectionID", c.id, "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action")
		return
	}

	if err := handler(ctx, c, message); err != nil {
		log.Debug("message rejected", "error", err)
	}
}

// closeClient runs once per connection, after its read pump stops.
func (that *Server) closeClient(ctx context.Context, c *client) {
	if !that.hub.unregister(c) {
		return
	}

	that.uGame.Disconnect(ctx, c.id)

	that.logger.Info("websocket connection closed", "connectionID", c.id)
}

func (that *Server) checkOrigin(req *http.Request) bool {
	if that.conf.AnyOrigin() {
		return true
	}

	origin := req.Header.Get("Origin")
	if origin == "" || slices.Contains(that.conf.AllowedOrigins, origin) {
		return true
	}

	that.logger.Warn("websocket origin not allowed", "origin", origin)

	return false
}

func (that *Server) cors() *cors.Cors {
	origins := []string{"*"}
	if !that.conf.AnyOrigin() {
		origins = that.conf.AllowedOrigins
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	})
}
