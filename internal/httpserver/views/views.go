// Package views holds the HTML templates and the view models they render.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	PageHome  = "home"
	PageLogin = "login"
)

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageHome, PageLogin} {
		tmpl, err := template.New(page).ParseFS(files, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// MustRenderer is NewRenderer for process start-up.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Component adapts a page to templ.
func (r *Renderer) Component(page string, data any) templ.Component {
	tmpl, ok := r.pages[page]
	if !ok {
		panic(fmt.Sprintf("views: unknown page %q", page))
	}
	return templ.FromGoHTML(tmpl.Lookup("layout"), data)
}

// Render writes page with the given status.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data any) {
	templ.Handler(r.Component(page, data), templ.WithStatus(status)).ServeHTTP(w, req)
}
