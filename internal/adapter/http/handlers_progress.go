package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"habitloop/internal/app"
)

func (s *Server) handleProgressRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	result, err := s.progress.RecordToday(r.Context(), user.ID, time.Now())
	if errors.Is(err, app.ErrAlreadyRecorded) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	today := localDayString(time.Now())
	if err := s.progress.UndoToday(r.Context(), user.ID, today); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "today": today})
}

func (s *Server) handleProgressLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r)

	logs, err := s.progress.Logs(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	limit := intQuery(r, "limit", len(logs))
	if limit < len(logs) {
		logs = logs[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": logs})
}
