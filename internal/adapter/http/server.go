package adapthttp

import (
	"net/http"

	"habitloop/internal/app"
	"habitloop/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional SSO provider configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	challenge   *app.ChallengeService
	progress    *app.ProgressService
	authSvc     *app.AuthService
	settings    domain.NotificationSettingsRepository
	oidcConfig  OIDCConfig
	webDir      string
	disableAuth bool
	debug       bool
}

// New creates a Server wired to the given application services.
func New(cs *app.ChallengeService, ps *app.ProgressService, as *app.AuthService, settings domain.NotificationSettingsRepository, webDir string) *Server {
	return &Server{challenge: cs, progress: ps, authSvc: as, settings: settings, webDir: webDir}
}

// WithOIDC enables SSO login through the given provider.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithoutAuth disables the auth middleware. Tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithDebug exposes the debug endpoints.
func (s *Server) WithDebug() *Server {
	s.debug = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/challenge", s.handleChallenge)
	api.HandleFunc("/challenge/finish", s.handleChallengeFinish)

	api.HandleFunc("/progress/record", s.handleProgressRecord)
	api.HandleFunc("/progress/undo", s.handleProgressUndo)
	api.HandleFunc("/progress/logs", s.handleProgressLogs)

	api.HandleFunc("/history", s.handleHistory)

	api.HandleFunc("/notifications", s.handleNotifications)

	if s.debug {
		api.HandleFunc("/debug/seed", s.handleDebugSeed)
	}

	auth := http.NewServeMux()
	auth.HandleFunc("/auth/login", s.handleLogin)
	auth.HandleFunc("/auth/logout", s.handleLogout)
	auth.HandleFunc("/auth/setup", s.handleSetupUser)
	auth.HandleFunc("/auth/config", s.handleConfig)
	auth.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	auth.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api", auth))
	root.Handle("/api/", http.StripPrefix("/api", s.authMiddleware(api)))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
