package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/murph/internal/metrics"
	"github.com/claude/murph/internal/models"
	"github.com/claude/murph/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	feedLimit        = 100
	leaderboardLimit = 10
)

// handleSubmitMurph accepts a finished session. The tier and duration are
// recomputed server-side; the session UUID makes retried submissions
// harmless.
func (s *Server) handleSubmitMurph(w http.ResponseWriter, r *http.Request) {
	var row models.MurphRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if row.ID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return
	}
	if err := row.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	row.UserID = userIDFromContext(r)
	row.Finalize()

	inserted, err := s.db.InsertMurph(r.Context(), row)
	if err != nil {
		s.log.Error("insert murph failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         row.ID,
		"inserted":   inserted,
		"murph_type": row.MurphType,
	})
}

func (s *Server) handleListMurphs(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryMurphs(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryAllMurphs(r.Context(), feedLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleMetrics loads the user's history and runs the metrics engine on it.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryMurphs(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, metrics.Compute(rows))
}

// handleLeaderboard returns the fastest FULL murphs since the start of the
// current month (UTC).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := s.db.Leaderboard(r.Context(), startOfMonth, leaderboardLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDeleteMurph(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid murph ID"})
		return
	}

	err = s.db.DeleteMurph(r.Context(), id, userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "murph not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
