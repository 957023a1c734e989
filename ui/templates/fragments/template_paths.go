// Package fragments provides template path constants for organized template management
package fragments

import "strings"

// Page templates
const (
	IndexPage = "index.html"
)

// Template path constants for organized fragment access
const (
	// Layout templates
	Sidebar  = "layout/sidebar.html"
	Messages = "layout/messages.html"

	// Annotation controls
	RadioForm   = "annotate/radio_form.html"
	ButtonsForm = "annotate/buttons_form.html"
	Record      = "annotate/record.html"

	// Status templates
	Progress      = "status/progress.html"
	JudgmentTable = "status/judgment_table.html"
)

// GetAllTemplatePaths returns all template paths for registration
func GetAllTemplatePaths() []string {
	return []string{
		// Layout
		Sidebar,
		Messages,

		// Annotation
		RadioForm,
		ButtonsForm,
		Record,

		// Status
		Progress,
		JudgmentTable,
	}
}

// GetTemplateCategory returns the category for a given template path
func GetTemplateCategory(templatePath string) string {
	switch {
	case strings.HasPrefix(templatePath, "layout/"):
		return "layout"
	case strings.HasPrefix(templatePath, "annotate/"):
		return "annotate"
	case strings.HasPrefix(templatePath, "status/"):
		return "status"
	default:
		return "unknown"
	}
}
