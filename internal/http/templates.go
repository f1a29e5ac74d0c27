package http

import (
	"embed"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/mrlokans/bookshelf/internal/entities"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// loadTemplates parses the page templates. A non-empty dir replaces the
// embedded set with the *.html files found there.
func loadTemplates(dir string, coversCached bool) (*template.Template, error) {
	funcMap := template.FuncMap{
		"coverSrc": func(b entities.Book) string {
			if b.CoverURL == "" {
				return ""
			}
			if coversCached && b.ID != "" {
				return "/book/" + b.ID + "/cover"
			}
			return b.CoverURL
		},
	}

	tmpl := template.New("").Funcs(funcMap)
	if dir == "" {
		parsed, err := tmpl.ParseFS(embeddedTemplates, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse embedded templates: %w", err)
		}
		return parsed, nil
	}

	parsed, err := tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates from %s: %w", dir, err)
	}
	return parsed, nil
}
