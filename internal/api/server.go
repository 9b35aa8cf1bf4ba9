package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"rflink/internal/models"
	"rflink/internal/realflight"

	"github.com/go-chi/chi/v5"
)

// SessionView is the read side of a simulator session
type SessionView interface {
	State() realflight.SessionState
	Stats() realflight.SessionStats
	Telemetry() models.TelemetryState
}

// PoolView is the read side of a connection pool
type PoolView interface {
	Stats() realflight.PoolStats
}

// Server answers status requests for one run
type Server struct {
	runID   string
	session SessionView
	pool    PoolView
}

type stateResponse struct {
	RunID     string                  `json:"run_id"`
	State     string                  `json:"state"`
	Stats     realflight.SessionStats `json:"stats"`
	Telemetry map[string]float64      `json:"telemetry"`
}

// New constructs the HTTP router exposing the session and pool status
func New(runID string, session SessionView, pool PoolView) http.Handler {
	s := &Server{runID: runID, session: session, pool: pool}
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			slog.Debug("Failed to write health response", "error", err)
		}
	})

	r.Get("/state", s.handleState)
	r.Get("/pool", s.handlePool)

	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	telemetry := s.session.Telemetry()
	writeJSON(w, stateResponse{
		RunID:     s.runID,
		State:     s.session.State().String(),
		Stats:     s.session.Stats(),
		Telemetry: telemetry.Values(),
	})
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.pool.Stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write JSON response", "error", err)
	}
}
