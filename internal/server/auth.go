package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/shared"
)

// AuthHandler serves the login, callback and logout routes of the authorization-code flow.
type AuthHandler struct {
	auth     Authenticator
	sessions *sessionManager
	onError  func(http.ResponseWriter, *http.Request, error)
	logger   *log.Logger
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /login", "GET /callback", "GET /logout"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	case "/logout":
		h.logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login stores a fresh state in the session and redirects to the provider's consent page.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.ensure(w, r)
	if err != nil {
		h.onError(w, r, fmt.Errorf("%w: %w", shared.ErrPersistence, err))
		return
	}

	state := shared.GenerateID()
	sess.SetOAuthState(state)

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusFound)
}

// callback validates the state, exchanges the code and stores the token.
//
// The state is single-use: it is cleared whether or not the exchange succeeds.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if sess == nil || sess.OAuthState == "" {
		h.onError(w, r, fmt.Errorf("%w: no login in progress", shared.ErrInvalidState))
		return
	}

	state := sess.OAuthState
	sess.SetOAuthState("")

	token, err := h.auth.Exchange(r.Context(), state, r)
	if err != nil {
		h.onError(w, r, err)
		return
	}

	sess.SetToken(token)
	h.logger.Info("logged in", "session", sess.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.destroy(w, r); err != nil {
		h.logger.Warn("failed to delete session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
