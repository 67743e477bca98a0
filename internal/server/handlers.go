package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "papertrader-engine",
	})
}

// handleListJobs returns a snapshot of every registered job's status.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.controller.Status())
}

// handleStartJob starts a named job. Starting an unregistered or
// already-running job is a no-op reported by the controller's own
// logging, so this always returns 202.
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.controller.Start(name)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"job": name, "action": "start"})
}

// handleStopJob stops a named job, waiting for its current tick to
// finish or a bounded timeout, whichever comes first.
func (s *Server) handleStopJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.controller.Stop(name)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"job": name, "action": "stop"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
