package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	adapthttp "habitloop/internal/adapter/http"
	"habitloop/internal/adapter/line"
	"habitloop/internal/adapter/postgres"
	"habitloop/internal/adapter/sqlite"
	"habitloop/internal/app"
	"habitloop/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// store groups the repository ports one backend provides.
type store struct {
	habits   domain.HabitRepository
	logs     domain.ProgressLogRepository
	history  domain.HistoryRepository
	users    domain.UserRepository
	sessions domain.SessionRepository
	settings domain.NotificationSettingsRepository
	closer   io.Closer
}

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	st, err := openStore()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = st.closer.Close() }()

	var notifier domain.Notifier = line.Nop{}
	if token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); token != "" {
		notifier = line.NewNotifier(st.settings, token)
		log.Print("LINE notifications enabled")
	}

	progressSvc := app.NewProgressService(st.logs, st.history, notifier)
	challengeSvc := app.NewChallengeService(st.habits, st.history, progressSvc, notifier)
	authSvc := app.NewAuthService(st.users, st.sessions)

	srv := adapthttp.New(challengeSvc, progressSvc, authSvc, st.settings, webDir)

	if cfg, err := oidcFromEnv(); err != nil {
		log.Fatalf("oidc: %v", err)
	} else if cfg != nil {
		srv = srv.WithOIDC(*cfg)
		log.Print("SSO login enabled")
	}

	if os.Getenv("HABITLOOP_DEBUG") == "1" {
		srv = srv.WithDebug()
		log.Print("debug endpoints enabled")
	}

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openStore prefers PostgreSQL when DATABASE_URL is set and falls back to a
// local SQLite file otherwise.
func openStore() (*store, error) {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			return nil, err
		}
		return &store{
			habits:   db,
			logs:     db,
			history:  db,
			users:    db,
			sessions: postgres.NewSessionRepo(db),
			settings: db,
			closer:   db,
		}, nil
	}

	path := env("SQLITE_PATH", "habitloop.db")
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	log.Printf("using sqlite store at %s", path)
	return &store{
		habits:   db,
		logs:     db,
		history:  db,
		users:    db,
		sessions: sqlite.NewSessionRepo(db),
		settings: db,
		closer:   db,
	}, nil
}

// oidcFromEnv builds the SSO configuration, or returns nil when the OIDC
// variables are unset.
func oidcFromEnv() (*adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return nil, nil
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		return nil, err
	}
	return &adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
