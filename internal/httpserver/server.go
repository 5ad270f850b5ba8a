package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/akitas-arrow/child-name/internal/content"
	custommw "github.com/akitas-arrow/child-name/internal/httpserver/middleware"
	"github.com/akitas-arrow/child-name/internal/httpserver/ui"
	"github.com/akitas-arrow/child-name/internal/httpserver/views"
	"github.com/akitas-arrow/child-name/internal/platform/httpx"
	"github.com/akitas-arrow/child-name/internal/platform/observability"
	"github.com/akitas-arrow/child-name/internal/services"
	"github.com/akitas-arrow/child-name/internal/session"
	"github.com/akitas-arrow/child-name/public"
)

const requestTimeout = 30 * time.Second

// Config holds runtime options for the HTTP server.
type Config struct {
	Address        string
	Logger         *zap.Logger
	Metrics        *observability.HTTPMetrics
	TraceProjectID string

	Suggestions services.SuggestionService
	Store       Pinger
	Pages       *content.Loader

	// Authenticator enables /login. Without one the login surface is not mounted and
	// AuthRequired is ignored.
	Authenticator Authenticator
	AuthRequired  bool
	Sessions      custommw.SessionStore
	CookieSecure  bool

	NewToken func() string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pages := cfg.Pages
	if pages == nil {
		pages = content.NewLoader("")
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = ephemeralSessions(cfg.CookieSecure)
	}
	renderer := views.MustRenderer()

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.TraceMiddleware(cfg.TraceProjectID))
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware(cfg.Metrics))
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(requestTimeout))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, httpx.NewError("not_found", "ページが見つかりません。", http.StatusNotFound))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, httpx.NewError("method_not_allowed", "この操作は許可されていません。", http.StatusMethodNotAllowed))
	})

	health := healthHandlers{store: cfg.Store}
	router.Get("/healthz", health.Healthz)
	router.Get("/readyz", health.Readyz)

	staticContent, err := public.StaticFS()
	if err != nil {
		panic(fmt.Sprintf("embed static: %v", err))
	}
	static := http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent)))
	router.Handle("/public/static/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		static.ServeHTTP(w, r)
	}))

	authEnabled := cfg.Authenticator != nil
	pagesHandlers := ui.NewHandlers(ui.Dependencies{
		Suggestions: cfg.Suggestions,
		Pages:       pages,
		Renderer:    renderer,
		AuthEnabled: authEnabled,
		NewToken:    cfg.NewToken,
	})

	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.SecurityHeaders())
		r.Use(custommw.Session(sessions))
		r.Use(custommw.CSRF(custommw.CSRFConfig{Secure: cfg.CookieSecure}))

		if authEnabled {
			auth := newAuthHandlers(cfg.Authenticator, renderer, pages)
			r.Get(loginPath, auth.LoginForm)
			r.Post(loginPath, auth.LoginSubmit)
			r.Post("/logout", auth.Logout)
		}

		r.Group(func(r chi.Router) {
			r.Use(custommw.RequireUser(loginPath, authEnabled && cfg.AuthRequired))
			r.Get("/", pagesHandlers.Home)
			r.Post("/suggestions", pagesHandlers.Submit)
		})
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}
}

// ephemeralSessions signs cookies with per-process keys, so sessions do not survive a restart.
func ephemeralSessions(secure bool) custommw.SessionStore {
	mgr, err := session.NewManager(session.Config{
		HashKey:      securecookie.GenerateRandomKey(32),
		BlockKey:     securecookie.GenerateRandomKey(32),
		CookieSecure: secure,
	})
	if err != nil {
		panic(err)
	}
	return mgr
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
