package adapthttp

import (
	"net/http"

	"habitloop/internal/domain"
)

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleNotificationsGet(w, r)
	case http.MethodPut:
		s.handleNotificationsPut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNotificationsGet(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	settings, err := s.settings.GetSettings(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if settings == nil {
		settings = &domain.NotificationSettings{UserID: user.ID}
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleNotificationsPut(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var body struct {
		LineUserID string `json:"lineUserId"`
		Enabled    bool   `json:"enabled"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	settings := domain.NotificationSettings{
		UserID:     user.ID,
		LineUserID: body.LineUserID,
		Enabled:    body.Enabled,
	}
	if err := s.settings.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
