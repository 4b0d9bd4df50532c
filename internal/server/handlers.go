package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/tasks"
	"github.com/desertthunder/mindmap/internal/web"
)

func authenticated(r *http.Request) bool {
	sess := SessionFrom(r.Context())
	return sess != nil && sess.Authenticated()
}

// catalog returns a provider handle for the session's token, refreshing it first if it is about to expire.
//
// When it returns false the response has been written, usually as a redirect to /login.
func (s *Server) catalog(w http.ResponseWriter, r *http.Request) (services.Catalog, *models.Session, bool) {
	sess := SessionFrom(r.Context())
	if sess == nil || !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil, nil, false
	}

	token, refreshed, err := s.guard.Ensure(r.Context(), sess.Token)
	if err != nil {
		s.logger.Warn("session token unusable", "session", sess.ID, "error", err)
		sess.SetToken(nil)
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil, nil, false
	}
	if refreshed {
		sess.SetToken(token)
	}

	return s.auth.Catalog(r.Context(), token), sess, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	p := web.Page{Authenticated: authenticated(r), Data: data}
	if err := s.renderer.Write(w, http.StatusOK, page, p); err != nil {
		s.logger.Error("failed to render page", "page", page, "error", err)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, web.PageHome, nil)
}

// search starts a new mindmap: the seen-set is cleared before anything else.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFrom(r.Context()); sess != nil {
		sess.ResetSeen()
	}

	catalog, _, ok := s.catalog(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tracks, err := tasks.SearchCatalog(r.Context(), catalog, query, s.searchLimit)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, web.PageSearch, web.SearchData{Query: query, Tracks: tracks})
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	catalog, sess, ok := s.catalog(w, r)
	if !ok {
		return
	}

	rec, seen, err := s.recommender.Recommend(r.Context(), catalog, r.PathValue("id"), sess.Seen)
	sess.SetSeen(seen)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, web.PageMindmap, rec)
}

// videoID answers the player's lookups with {"video_id": ...} or {"error": ...}.
func (s *Server) videoID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	id, err := s.videos.Find(r.Context(), q.Get("track"), q.Get("artist"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"video_id": id})
	case errors.Is(err, shared.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "track and artist are required"})
	case errors.Is(err, shared.ErrVideoNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no video found"})
	default:
		s.logger.Error("video lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "video search failed"})
	}
}

func (s *Server) selectTracks(w http.ResponseWriter, r *http.Request) {
	catalog, sess, ok := s.catalog(w, r)
	if !ok {
		return
	}
	if len(sess.Seen) == 0 {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	tracks, err := tasks.SelectedTracks(r.Context(), catalog, sess.Seen)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, web.PageSelect, web.SelectData{Tracks: tracks})
}

func (s *Server) createCD(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	name := strings.TrimSpace(r.PostForm.Get("playlist_name"))
	trackIDs := r.PostForm["track_ids"]
	if name == "" || len(trackIDs) == 0 {
		s.renderError(w, r, fmt.Errorf("%w: a CD title and at least one track are required", shared.ErrInvalidInput))
		return
	}

	catalog, _, ok := s.catalog(w, r)
	if !ok {
		return
	}

	owner, err := catalog.CurrentUser(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if _, err := s.cds.Create(r.Context(), catalog, owner, name, trackIDs); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/my-cds", http.StatusSeeOther)
}

func (s *Server) myCDs(w http.ResponseWriter, r *http.Request) {
	catalog, _, ok := s.catalog(w, r)
	if !ok {
		return
	}

	owner, err := catalog.CurrentUser(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	playlists, err := s.cds.List(r.Context(), owner)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, web.PageMyCDs, web.CDListData{Playlists: playlists})
}

func (s *Server) cdDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.renderError(w, r, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, r.PathValue("id")))
		return
	}

	catalog, _, ok := s.catalog(w, r)
	if !ok {
		return
	}

	owner, err := catalog.CurrentUser(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	cd, err := s.cds.Detail(r.Context(), catalog, owner, id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, web.PageCD, cd)
}
