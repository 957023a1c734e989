package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"hpoannotate/ui/services"
	"hpoannotate/ui/templates/fragments"
)

//go:embed templates/*.html templates/fragments/*/*.html static/css/*
var embeddedFiles embed.FS

// templateFuncs are shared by both routers
var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"pct": func(f float64) string { return fmt.Sprintf("%.1f", f*100) },
}

// parseTemplates parses the page and every fragment under its path name
func parseTemplates() (*template.Template, error) {
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	root := template.New("").Funcs(templateFuncs)
	if _, err := parseTemplateFile(root, templatesFS, fragments.IndexPage, fragments.IndexPage); err != nil {
		return nil, err
	}
	for _, name := range fragments.GetAllTemplatePaths() {
		if _, err := parseTemplateFile(root, templatesFS, "fragments/"+name, name); err != nil {
			return nil, err
		}
	}
	log.Printf("[TemplateInit] Parsed %d templates", len(fragments.GetAllTemplatePaths())+1)
	return root, nil
}

func parseTemplateFile(root *template.Template, fsys fs.FS, file, name string) (*template.Template, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", file, err)
	}
	t, err := root.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
	}
	return t, nil
}

// staticFileSystem serves the embedded stylesheet under /static
func staticFileSystem() (http.FileSystem, error) {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static filesystem: %w", err)
	}
	return http.FS(staticFS), nil
}

// newRenderService parses the templates for a router
func newRenderService() (*services.RenderService, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return services.NewRenderService(templates), nil
}
