package services

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"log"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed guidelines.md
var defaultGuidelines []byte

type RenderService struct {
	templates *template.Template
}

func NewRenderService(templates *template.Template) *RenderService {
	return &RenderService{
		templates: templates,
	}
}

// Render executes a template into a buffer first so a failing template never
// leaves a half-written response
func (s *RenderService) Render(w io.Writer, templateName string, data interface{}) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("[ERROR] Failed to render %s: %v", templateName, err)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderGuidelines converts markdown to HTML. Raw HTML in the source is
// dropped. Empty input renders the built-in guidelines.
func RenderGuidelines(source []byte) template.HTML {
	if len(bytes.TrimSpace(source)) == 0 {
		source = defaultGuidelines
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})
	return template.HTML(markdown.ToHTML(append([]byte(nil), source...), p, renderer))
}
