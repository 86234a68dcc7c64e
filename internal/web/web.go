// Package web renders the HTML pages served by the ga4x server.
//
// Templates are embedded and parsed once by [NewRenderer]. Every page shares the "layout"
// template; page templates define a "content" block.
//
// Pages
//
//   - analytics.html: the three-metric summary for the configured window
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/desertthunder/ga4x/internal/analytics"
)

//go:embed templates/*.html
var templateFiles embed.FS

// AnalyticsPage is the data passed to analytics.html.
type AnalyticsPage struct {
	Data      analytics.Summary
	Property  string
	StartDate string
	EndDate   string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template together with the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"analytics.html"} {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page executed with data to w.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	return nil
}

// Analytics renders the summary page with status 200.
//
// The page is buffered so a template failure never leaves a half-written 200 response.
func (r *Renderer) Analytics(w http.ResponseWriter, page AnalyticsPage) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, "analytics.html", page); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
