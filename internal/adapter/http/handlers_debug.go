package adapthttp

import (
	"net/http"
	"time"
)

// handleDebugSeed replaces the current user's logs with a consecutive run
// ending today. Registered only when debug mode is on.
func (s *Server) handleDebugSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	var body struct {
		Days int `json:"days"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.progress.SeedLogs(r.Context(), user.ID, body.Days, time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "days": body.Days})
}
