// Package web renders the server-side HTML pages of the mindmap.
//
// Every page is parsed together with templates/layout.html, which defines the shared chrome and
// calls the page's "title" and "content" blocks. Handlers pass a [Page] whose Data field holds
// the page-specific value:
//
//	home    → nil
//	search  → [SearchData]
//	mindmap → *models.Recommendation
//	select  → [SelectData]
//	my_cds  → [CDListData]
//	cd      → *models.CD
//	error   → [ErrorData]
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/desertthunder/mindmap/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page names accepted by [Renderer.Render].
const (
	PageHome    = "home"
	PageSearch  = "search"
	PageMindmap = "mindmap"
	PageSelect  = "select"
	PageMyCDs   = "my_cds"
	PageCD      = "cd"
	PageError   = "error"
)

var pages = []string{PageHome, PageSearch, PageMindmap, PageSelect, PageMyCDs, PageCD, PageError}

// Page is the value every template is executed with.
type Page struct {
	Authenticated bool
	Data          any
}

type SearchData struct {
	Query  string
	Tracks []models.Track
}

type SelectData struct {
	Tracks []models.Track
}

type CDListData struct {
	Playlists []*models.Playlist
}

type ErrorData struct {
	Status  int
	Message string
}

// Renderer holds the parsed page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).ParseFS(templateFS, layoutFile, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render executes page into w.
func (r *Renderer) Render(w io.Writer, page string, data Page) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Write renders page with status as an HTML response.
//
// The page is rendered into a buffer first so a template error still produces a clean 500.
func (r *Renderer) Write(w http.ResponseWriter, status int, page string, data Page) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
