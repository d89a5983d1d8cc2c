package view

import (
	"io/fs"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberdesk/fiberdesk/web"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLogin(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{Title: "Sign in", CSRFToken: "tok", Data: map[string]any{"Next": "/users"}})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "<form")
	assert.Contains(t, rec.Body.String(), `value="tok"`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Error(t, engine.Render(httptest.NewRecorder(), "pages/missing.html", TemplateData{}))
}

func TestSearchBoxDebouncesHTTPFallback(t *testing.T) {
	layout, err := fs.ReadFile(web.Templates, "templates/layouts/base.html")
	require.NoError(t, err)
	assert.Contains(t, string(layout), `data-debounce="150"`)

	script, err := fs.ReadFile(web.Static, "static/js/search.js")
	require.NoError(t, err)
	assert.Contains(t, string(script), "input.dataset.debounce")
	assert.Contains(t, string(script), "clearTimeout(pending)")
	assert.Contains(t, string(script), "setTimeout(")
}
