package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Waiting int    `json:"waiting"`
	Games   int    `json:"games"`
}

func (that *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	stats := that.registry.Stats()

	that.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Players: stats.Players,
		Waiting: stats.Waiting,
		Games:   stats.Games,
	})
}

func (that *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "statsHandler")

	if that.results == nil {
		http.NotFound(w, r)
		return
	}

	stats, err := that.results.Stats(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrEmptyName) {
		http.NotFound(w, r)
		return
	}

	if err != nil {
		log.Error("failed to get player stats", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

func (that *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "resultsHandler")

	if that.results == nil {
		http.NotFound(w, r)
		return
	}

	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}

		limit = min(parsed, maxResultsLimit)
	}

	results, err := that.results.Recent(r.Context(), limit)
	if err != nil {
		log.Error("failed to get recent results", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, results)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
