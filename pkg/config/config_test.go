package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interceptd/interceptd/pkg/handler"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func respond(t *testing.T, h *handler.Handler, method, target, body string) *handler.Response {
	t.Helper()
	req, err := handler.NewRequest(method, target, []byte(body))
	require.NoError(t, err)
	resp, err := h.Respond(req)
	require.NoError(t, err)
	return resp
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "handlers.yaml", `
handlers:
  - method: GET
    path: /api/user
    response:
      status: 200
      headers:
        - name: X-Source
          value: file
      body:
        name: John Doe
  - method: POST
    path: /api/users
    response:
      status: 201
      body: created
      delayMs: 10
`)

	handlers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, handlers, 2)

	assert.Equal(t, "GET", handlers[0].Method)
	assert.Equal(t, "/api/user", handlers[0].Path)

	resp := respond(t, handlers[0], "GET", "/api/user", "")
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, "file", resp.Header.Get("X-Source"))
	// Structured bodies are encoded as JSON with a content type.
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"John Doe"}`, string(resp.Body))

	resp = respond(t, handlers[1], "POST", "/api/users", "")
	assert.Equal(t, 201, resp.Status())
	assert.Equal(t, "created", string(resp.Body))
	assert.Equal(t, "", resp.Header.Get("Content-Type"))
	assert.Equal(t, int64(10), resp.Delay.Milliseconds())
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "handlers.json", `{
  "handlers": [
    {
      "method": "DELETE",
      "path": "/items/{id}",
      "response": {"status": 204}
    }
  ]
}`)

	handlers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, handlers, 1)

	params, ok := handlers[0].MatchPath("/items/9")
	require.True(t, ok)
	assert.Equal(t, "9", params["id"])
}

func TestLoadWithMatchCriteria(t *testing.T) {
	path := writeFile(t, t.TempDir(), "handlers.yaml", `
handlers:
  - method: POST
    path: /orders
    match:
      headers:
        Content-Type: application/json
      bodyJsonPath:
        $.total: 10
      when: 'query.source == "web"'
    response:
      status: 202
`)

	handlers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	require.NotNil(t, handlers[0].Match)
	assert.Equal(t, "application/json", handlers[0].Match.Headers["Content-Type"])
	assert.Equal(t, `query.source == "web"`, handlers[0].Match.When)
}

func TestLoadWithValidation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "handlers.yaml", `
handlers:
  - method: POST
    path: /users
    validation:
      bodySchema:
        type: object
        required: [name]
      failureStatus: 422
    response:
      status: 201
`)

	handlers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, handlers, 1)
	require.False(t, handlers[0].Validation.Empty())
	assert.Equal(t, 422, handlers[0].Validation.Status())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "no handlers", content: "handlers: []\n"},
		{name: "missing response", content: "handlers:\n  - method: GET\n    path: /a\n"},
		{name: "bad pattern", content: "handlers:\n  - method: GET\n    path: bad\n    response: {status: 200}\n"},
		{name: "negative delay", content: "handlers:\n  - method: GET\n    path: /a\n    response: {status: 200, delayMs: -1}\n"},
		{name: "not yaml", content: "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad-"+tt.name+".yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, dir, "a.yaml", "handlers:\n  - {method: GET, path: /a, response: {status: 200}}\n")
	writeFile(t, filepath.Join(dir, "nested"), "b.yaml", "handlers:\n  - {method: GET, path: /b, response: {status: 200}}\n")

	handlers, err := LoadGlob(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)
	assert.Len(t, handlers, 2)
}

func TestLoadGlobNoMatches(t *testing.T) {
	_, err := LoadGlob(filepath.Join(t.TempDir(), "*.yaml"))
	assert.Error(t, err)
}
