package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/web"
)

// statusFor maps a sentinel error to the HTTP status of the error page.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound),
		errors.Is(err, shared.ErrTrackNotFound),
		errors.Is(err, shared.ErrVideoNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAPIRequest),
		errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the user-facing text for status.
func messageFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request was missing something we need."
	case http.StatusNotFound:
		return "We couldn't find what you were looking for."
	case http.StatusBadGateway:
		return "A music service didn't answer properly. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

// renderError logs err and renders the error page with a link home.
//
// Authentication problems are not pages: a rejected token sends the user back through /login,
// and a declined consent screen returns them to the home page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrAuthFailed):
		s.logger.Warn("authorization declined", "path", r.URL.Path, "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case errors.Is(err, shared.ErrNotAuthenticated):
		s.logger.Warn("session not authenticated", "path", r.URL.Path, "error", err)
		if sess := SessionFrom(r.Context()); sess != nil {
			sess.SetToken(nil)
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	page := web.Page{
		Authenticated: authenticated(r),
		Data:          web.ErrorData{Status: status, Message: messageFor(status)},
	}
	if err := s.renderer.Write(w, status, web.PageError, page); err != nil {
		s.logger.Error("failed to render error page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
