// Package view renders the HTML pages.  Each page template defines a
// "content" block that the shared default layout wraps.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var files embed.FS

// Page names understood by Render.
const (
	PageIndex   = "index"
	PageResults = "results"
	PageShow    = "show"
)

const defaultLayout = "templates/layouts/default.html"

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the default layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range []string{PageIndex, PageResults, PageShow} {
		t, err := template.New(name).ParseFS(files, defaultLayout, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the layout for the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
