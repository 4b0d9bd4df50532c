// package server contains middleware & handlers for the mindmap web app
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/tasks"
	"github.com/desertthunder/mindmap/internal/web"
	"github.com/gorilla/handlers"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method-qualified patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// SessionStore persists sessions, implemented by repositories.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, ttl time.Duration) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// Authenticator runs the provider's authorization-code flow, implemented by services.SpotifyClients.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error)
	Catalog(ctx context.Context, token *oauth2.Token) services.Catalog
}

// TokenEnsurer keeps a session token usable, implemented by services.TokenGuard.
type TokenEnsurer interface {
	Ensure(ctx context.Context, token *oauth2.Token) (*oauth2.Token, bool, error)
}

// Deps are the collaborators of a [Server].
type Deps struct {
	Auth        Authenticator
	Guard       TokenEnsurer
	Sessions    SessionStore
	Recommender *tasks.Recommender
	Videos      *tasks.VideoMatcher
	CDs         *tasks.CDBuilder
	Renderer    *web.Renderer
	Logger      *log.Logger

	SessionTTL    time.Duration
	SecureCookies bool
	SearchLimit   int
}

// Server serves the mindmap pages.
type Server struct {
	auth        Authenticator
	guard       TokenEnsurer
	recommender *tasks.Recommender
	videos      *tasks.VideoMatcher
	cds         *tasks.CDBuilder
	renderer    *web.Renderer
	sessions    *sessionManager
	logger      *log.Logger
	searchLimit int
	router      *BasicRouter
}

// New wires the routes. Every dependency except Logger is required.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Auth == nil, deps.Guard == nil, deps.Sessions == nil:
		return nil, fmt.Errorf("%w: auth, token guard and session store are required", shared.ErrServiceUnavailable)
	case deps.Recommender == nil, deps.Videos == nil, deps.CDs == nil, deps.Renderer == nil:
		return nil, fmt.Errorf("%w: tasks and renderer are required", shared.ErrServiceUnavailable)
	}
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 30 * 24 * time.Hour
	}

	logger := shared.WithLogger(deps.Logger, "component", "server")
	s := &Server{
		auth:        deps.Auth,
		guard:       deps.Guard,
		recommender: deps.Recommender,
		videos:      deps.Videos,
		cds:         deps.CDs,
		renderer:    deps.Renderer,
		logger:      logger,
		searchLimit: deps.SearchLimit,
		sessions: &sessionManager{
			store:  deps.Sessions,
			ttl:    deps.SessionTTL,
			secure: deps.SecureCookies,
			logger: logger,
		},
		router: NewBasicRouter(),
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc(http.MethodGet, "/healthz", s.healthz)

	s.router.Use(s.sessions.Middleware)

	s.router.Handler(&AuthHandler{auth: s.auth, sessions: s.sessions, onError: s.renderError, logger: s.logger})
	s.router.HandleFunc(http.MethodGet, "/{$}", s.home)
	s.router.HandleFunc(http.MethodGet, "/search", s.search)
	s.router.HandleFunc(http.MethodGet, "/recommendations/{id}", s.recommendations)
	s.router.HandleFunc(http.MethodGet, "/api/get-video-id", s.videoID)
	s.router.HandleFunc(http.MethodGet, "/select-tracks", s.selectTracks)
	s.router.HandleFunc(http.MethodPost, "/create-cd", s.createCD)
	s.router.HandleFunc(http.MethodGet, "/my-cds", s.myCDs)
	s.router.HandleFunc(http.MethodGet, "/cd/{id}", s.cdDetail)
}

// Handler returns the router wrapped in panic recovery and combined access logging.
func (s *Server) Handler() http.Handler {
	accessLog := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer()
	recoveryLog := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLog),
		handlers.PrintRecoveryStack(true),
	)(handlers.CombinedLoggingHandler(accessLog, s.router))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-serverErr
	}
}
