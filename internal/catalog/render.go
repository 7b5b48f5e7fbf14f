package catalog

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

type TemplateRenderer struct {
	t *template.Template
}

// NewTemplateRenderer parses the page templates compiled into the binary.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	t, err := template.New("").ParseFS(webFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &TemplateRenderer{t: t}, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	return r.t.ExecuteTemplate(w, name, data)
}

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return sub
}
