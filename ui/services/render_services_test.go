package services

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGuidelines(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
		excludes string
	}{
		{"builtin", "", "Annotation guidelines", ""},
		{"custom", "# Rules\n\nAnswer **yes** only for the patient.", "<strong>yes</strong>", "Annotation guidelines"},
		{"raw html dropped", "ok <script>alert(1)</script>", "ok", "<script>"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := string(RenderGuidelines([]byte(test.source)))
			assert.Contains(t, out, test.contains)
			if test.excludes != "" {
				assert.NotContains(t, out, test.excludes)
			}
		})
	}
}

func TestRenderServiceBuffersFailures(t *testing.T) {
	templates := template.Must(template.New("ok.html").Parse(`hello {{.}}`))
	template.Must(templates.New("bad.html").Parse(`start {{.Missing.Field}}`))
	render := NewRenderService(templates)

	var buf bytes.Buffer
	require.NoError(t, render.Render(&buf, "ok.html", "alice"))
	assert.Equal(t, "hello alice", buf.String())

	buf.Reset()
	assert.Error(t, render.Render(&buf, "bad.html", "alice"))
	assert.Empty(t, buf.String())
}
