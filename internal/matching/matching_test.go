package matching

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interceptd/interceptd/pkg/handler"
)

func request(method, path string, body string) *handler.Request {
	req, _ := handler.NewRequest(method, path, []byte(body))
	return req
}

func TestMatchesHeaders(t *testing.T) {
	req := request("GET", "/api", "")
	req.Header = http.Header{}
	req.Header.Set("Authorization", "Bearer abc")

	assert.True(t, Matches(&handler.Criteria{
		Headers: map[string]string{"Authorization": "Bearer abc"},
	}, req))
	assert.False(t, Matches(&handler.Criteria{
		Headers: map[string]string{"Authorization": "Bearer other"},
	}, req))
	assert.False(t, Matches(&handler.Criteria{
		Headers: map[string]string{"X-Missing": "1"},
	}, req))
}

func TestMatchesQuery(t *testing.T) {
	req := request("GET", "/search?q=go&page=2", "")

	assert.True(t, Matches(&handler.Criteria{
		Query: map[string]string{"q": "go", "page": "2"},
	}, req))
	assert.False(t, Matches(&handler.Criteria{
		Query: map[string]string{"q": "rust"},
	}, req))
}

func TestMatchesBody(t *testing.T) {
	req := request("POST", "/users", `{"name":"jane","age":30}`)

	tests := []struct {
		name     string
		criteria *handler.Criteria
		want     bool
	}{
		{
			name:     "body equals",
			criteria: &handler.Criteria{BodyEquals: `{"name":"jane","age":30}`},
			want:     true,
		},
		{
			name:     "body equals mismatch",
			criteria: &handler.Criteria{BodyEquals: `{}`},
			want:     false,
		},
		{
			name:     "body contains",
			criteria: &handler.Criteria{BodyContains: `"jane"`},
			want:     true,
		},
		{
			name:     "body contains mismatch",
			criteria: &handler.Criteria{BodyContains: "bob"},
			want:     false,
		},
		{
			name:     "jsonpath value match",
			criteria: &handler.Criteria{BodyJSONPath: map[string]any{"$.name": "jane"}},
			want:     true,
		},
		{
			name:     "jsonpath numeric match uses json number semantics",
			criteria: &handler.Criteria{BodyJSONPath: map[string]any{"$.age": 30}},
			want:     true,
		},
		{
			name:     "jsonpath existence check",
			criteria: &handler.Criteria{BodyJSONPath: map[string]any{"$.name": nil}},
			want:     true,
		},
		{
			name:     "jsonpath missing field",
			criteria: &handler.Criteria{BodyJSONPath: map[string]any{"$.email": "x"}},
			want:     false,
		},
		{
			name:     "jsonpath invalid expression",
			criteria: &handler.Criteria{BodyJSONPath: map[string]any{"$[": "x"}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.criteria, req))
		})
	}
}

func TestMatchesJSONPathNonJSONBody(t *testing.T) {
	req := request("POST", "/users", "not json")
	assert.False(t, Matches(&handler.Criteria{
		BodyJSONPath: map[string]any{"$.name": "jane"},
	}, req))
}

func TestMatchesWhenExpression(t *testing.T) {
	req := request("POST", "/users/99?dry=true", `{"admin":true}`)
	req.Params = map[string]string{"id": "99"}
	req.Header = http.Header{}
	req.Header.Set("X-Tenant", "acme")

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "method check", expr: `method == "POST"`, want: true},
		{name: "path check", expr: `path startsWith "/users"`, want: true},
		{name: "param check", expr: `params.id == "99"`, want: true},
		{name: "query check", expr: `query.dry == "true"`, want: true},
		{name: "header check lower-cased", expr: `headers["x-tenant"] == "acme"`, want: true},
		{name: "body substring", expr: `body contains "admin"`, want: true},
		{name: "false predicate", expr: `method == "GET"`, want: false},
		{name: "invalid expression counts as no match", expr: `nonsense(`, want: false},
		{name: "non-boolean result counts as no match", expr: `path`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(&handler.Criteria{When: tt.expr}, req))
		})
	}
}

func TestMatchesEmptyCriteria(t *testing.T) {
	req := request("GET", "/anything", "")
	assert.True(t, Matches(&handler.Criteria{}, req))
}

func TestMatchesCombinedConditions(t *testing.T) {
	req := request("POST", "/orders?source=web", `{"total":10}`)
	req.Header = http.Header{"Content-Type": []string{"application/json"}}

	c := &handler.Criteria{
		Headers:      map[string]string{"Content-Type": "application/json"},
		Query:        map[string]string{"source": "web"},
		BodyJSONPath: map[string]any{"$.total": 10},
	}
	assert.True(t, Matches(c, req))

	// One failing condition fails the whole criteria.
	req.Query = url.Values{"source": []string{"mobile"}}
	assert.False(t, Matches(c, req))
}
