package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer writes a named page with its data to the response.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// TemplateRenderer renders the embedded html/template pages.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var funcMap = template.FuncMap{
	"monthName": MonthName,
}

// NewTemplateRenderer parses the layout and every page template.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	layout, err := template.New("layout.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageAccount, PageMail, PageCourses, PageCalendar} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", page, err)
		}
		tmpl, err := clone.ParseFS(templateFS, "templates/"+page+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.tmpl", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var _ Renderer = (*TemplateRenderer)(nil)
