package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
)

// SessionCookie holds the session id.
const SessionCookie = "mindmap_session"

type sessionKey struct{}

// sessionHolder lets handlers replace the request's session after the middleware has run.
type sessionHolder struct {
	session *models.Session
}

// SessionFrom returns the request's session, or nil when the client has none.
func SessionFrom(ctx context.Context) *models.Session {
	if h, ok := ctx.Value(sessionKey{}).(*sessionHolder); ok {
		return h.session
	}
	return nil
}

// sessionManager loads, creates, and persists server-side sessions keyed by cookie.
type sessionManager struct {
	store  SessionStore
	ttl    time.Duration
	secure bool
	logger *log.Logger
}

// Middleware attaches the cookie's session to the request context and saves it afterwards if it changed.
//
// Unknown or expired ids are treated as no session; the stale cookie is left for [sessionManager.ensure] to replace.
func (m *sessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder := &sessionHolder{}

		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			sess, err := m.store.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				holder.session = sess
			case errors.Is(err, shared.ErrSessionNotFound):
				m.logger.Debug("stale session cookie", "session", c.Value)
			default:
				m.logger.Error("failed to load session", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, holder)))

		if holder.session != nil && holder.session.Dirty() {
			if err := m.store.Save(r.Context(), holder.session); err != nil {
				m.logger.Error("failed to save session", "session", holder.session.ID, "error", err)
			}
		}
	})
}

// ensure returns the request's session, creating one and setting its cookie if needed.
func (m *sessionManager) ensure(w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	holder, ok := r.Context().Value(sessionKey{}).(*sessionHolder)
	if !ok {
		return nil, errors.New("session middleware not installed")
	}
	if holder.session != nil {
		return holder.session, nil
	}

	sess, err := m.store.Create(r.Context(), m.ttl)
	if err != nil {
		return nil, err
	}
	holder.session = sess
	http.SetCookie(w, m.cookie(sess.ID, sess.ExpiresAt))

	m.logger.Debug("session created", "session", sess.ID)
	return sess, nil
}

// destroy deletes the request's session and expires the cookie.
func (m *sessionManager) destroy(w http.ResponseWriter, r *http.Request) error {
	holder, _ := r.Context().Value(sessionKey{}).(*sessionHolder)

	http.SetCookie(w, m.cookie("", time.Unix(0, 0)))
	if holder == nil || holder.session == nil {
		return nil
	}

	id := holder.session.ID
	holder.session = nil
	return m.store.Delete(r.Context(), id)
}

func (m *sessionManager) cookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
