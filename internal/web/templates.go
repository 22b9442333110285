package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page templates. Every page template extends
// the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// pageNames lists the templates rendered inside the layout.
var pageNames = []string{"index.html", "add_event.html", "login.html", "register.html"}

// NewRenderer parses the embedded templates. It panics on a malformed
// template, which is a build defect, not a runtime condition.
func NewRenderer() *Renderer {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.ParseFS(templateFS,
			"templates/layout.html", "templates/"+name))
	}
	return &Renderer{pages: pages}
}

// PageData is the envelope every page receives.
type PageData struct {
	Title    string
	Username string
	Flash    *Flash
	Data     any
}

// Flash is a one-shot message shown at the top of the next page.
type Flash struct {
	Kind    string // "success", "info" or "error"
	Message string
}

// Render writes a page. A template execution failure is logged and answered
// with a plain 500; the process keeps serving.
func (r *Renderer) Render(w http.ResponseWriter, page string, data PageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("Unknown page template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render template")
	}
}
