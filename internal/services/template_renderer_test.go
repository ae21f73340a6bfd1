package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathway-notify/internal/models"
)

var testRecord = models.Record{
	SendTo:       "a@x.com",
	PathwayTitle: "P1",
	WikiURL:      "http://w/1",
}

func TestRenderSubject_PathwayTitle(t *testing.T) {
	r := NewTemplateRenderer()

	out, err := r.RenderSubject("{{ .record.pathway_title }}", models.Record{PathwayTitle: "Intro to Rust"})
	require.NoError(t, err)
	assert.Contains(t, out, "Intro to Rust")
}

func TestRender_DefaultTemplates(t *testing.T) {
	r := NewTemplateRenderer()
	tpl := BuildTemplates(false, "", "")

	subject, err := r.RenderSubject(tpl.Subject, testRecord)
	require.NoError(t, err)
	assert.Equal(t, "Content Deleted from Degreed Pathway: P1", subject)

	body, err := r.RenderBody(tpl.Body, testRecord)
	require.NoError(t, err)
	assert.Contains(t, body, "creator of the Degreed Pathway: P1,")
	assert.Contains(t, body, "has been removed: http://w/1.")
	assert.Contains(t, body, "The Learning Admins")
}

func TestRender_SubjectIsNotHTMLEscaped(t *testing.T) {
	r := NewTemplateRenderer()
	record := models.Record{PathwayTitle: "Tips & <Tricks>"}

	subject, err := r.RenderSubject(DefaultSubjectTemplate, record)
	require.NoError(t, err)
	assert.Equal(t, "Content Deleted from Degreed Pathway: Tips & <Tricks>", subject)

	body, err := r.RenderBody(DefaultBodyTemplate, record)
	require.NoError(t, err)
	assert.Contains(t, body, "Tips &amp; &lt;Tricks&gt;")
}

func TestRender_SprigFunctions(t *testing.T) {
	r := NewTemplateRenderer()

	out, err := r.RenderSubject("{{ .record.pathway_title | upper }}", testRecord)
	require.NoError(t, err)
	assert.Equal(t, "P1", out)

	out, err = r.RenderBody("<b>{{ .record.send_to | trimSuffix \"@x.com\" }}</b>", testRecord)
	require.NoError(t, err)
	assert.Equal(t, "<b>a</b>", out)
}

func TestRender_Errors(t *testing.T) {
	r := NewTemplateRenderer()

	tests := []struct {
		name   string
		render func() (string, error)
	}{
		{
			name:   "subject parse error",
			render: func() (string, error) { return r.RenderSubject("{{ .record.pathway_title", testRecord) },
		},
		{
			name:   "subject unknown field",
			render: func() (string, error) { return r.RenderSubject("{{ .record.nope }}", testRecord) },
		},
		{
			name:   "body parse error",
			render: func() (string, error) { return r.RenderBody("{{ if }}", testRecord) },
		},
		{
			name:   "body unknown field",
			render: func() (string, error) { return r.RenderBody("{{ .record.nope }}", testRecord) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.render()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrTemplate))
			assert.Empty(t, out)
		})
	}
}

func TestBuildTemplates(t *testing.T) {
	live := BuildTemplates(false, "", "")
	assert.Equal(t, DefaultSubjectTemplate, live.Subject)
	assert.Equal(t, DefaultBodyTemplate, live.Body)

	dry := BuildTemplates(true, "S", "B")
	assert.Equal(t, "TESTING - S", dry.Subject)
	assert.Equal(t, "<P>TESTING, PLEASE IGNORE</P>B", dry.Body)
}
