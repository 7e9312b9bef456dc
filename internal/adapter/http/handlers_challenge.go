package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"habitloop/internal/app"
)

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleChallengeGet(w, r)
	case http.MethodPost:
		s.handleChallengeStart(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleChallengeGet(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	habit, err := s.challenge.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	today := localDayString(time.Now())
	status, err := s.progress.Status(r.Context(), user.ID, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"today":  today,
		"habit":  habit,
		"status": status,
	})
}

func (s *Server) handleChallengeStart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var body struct {
		Name       string `json:"name"`
		TargetTime string `json:"targetTime"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.challenge.Start(r.Context(), user.ID, body.Name, body.TargetTime); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleChallengeFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	record, err := s.challenge.Finish(r.Context(), user.ID, time.Now())
	switch {
	case errors.Is(err, app.ErrNoActiveHabit):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, app.ErrChallengeNotCompleted):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": record})
}
