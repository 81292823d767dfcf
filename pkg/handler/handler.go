// Package handler defines the request handler model for the interception
// harness: a rule mapping a request shape (method, path pattern, optional
// extra criteria) to a responder that synthesizes the response.
package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interceptd/interceptd/internal/pattern"
	"github.com/interceptd/interceptd/pkg/validation"
)

// Responder produces the response for a matched request. Returning an error
// marks the responder itself as broken; the harness surfaces it as a
// transport-level failure. To simulate an HTTP error, return a Response with
// the wanted status instead.
type Responder func(req *Request) (*Response, error)

// Criteria are optional match conditions evaluated after method and path.
// All configured conditions must hold (AND semantics).
type Criteria struct {
	// Headers requires each named request header to equal the given value.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Query requires each named query parameter to equal the given value.
	Query map[string]string `json:"query,omitempty" yaml:"query,omitempty"`

	// BodyEquals requires the request body to match exactly.
	BodyEquals string `json:"bodyEquals,omitempty" yaml:"bodyEquals,omitempty"`

	// BodyContains requires the request body to contain the substring.
	BodyContains string `json:"bodyContains,omitempty" yaml:"bodyContains,omitempty"`

	// BodyJSONPath maps JSONPath expressions to expected values in the
	// request body.
	BodyJSONPath map[string]any `json:"bodyJsonPath,omitempty" yaml:"bodyJsonPath,omitempty"`

	// When is an expression evaluated against the captured request
	// (variables: method, path, params, query, headers, body). The handler
	// matches only if it evaluates to true.
	When string `json:"when,omitempty" yaml:"when,omitempty"`
}

// Empty reports whether no conditions are configured.
func (c *Criteria) Empty() bool {
	if c == nil {
		return true
	}
	return len(c.Headers) == 0 && len(c.Query) == 0 &&
		c.BodyEquals == "" && c.BodyContains == "" &&
		len(c.BodyJSONPath) == 0 && c.When == ""
}

// Handler is a registered interception rule. Handlers are immutable once
// registered; registering a new handler for the same (method, path) shadows
// earlier ones within the same registry layer.
type Handler struct {
	// ID uniquely identifies the handler, for request-log correlation.
	id string

	// Method is the HTTP method this handler answers, upper-cased.
	Method string

	// Path is the raw path pattern text.
	Path string

	// Match holds optional extra match conditions.
	Match *Criteria

	// Validation optionally validates matched request bodies before the
	// responder runs.
	Validation *validation.RequestValidation

	// Respond synthesizes the response.
	Respond Responder

	compiled *pattern.Pattern
}

// New compiles a handler for the given method and path pattern.
func New(method, path string, respond Responder) (*Handler, error) {
	if method == "" {
		return nil, fmt.Errorf("handler: method is required")
	}
	if respond == nil {
		return nil, fmt.Errorf("handler: responder is required")
	}
	p, err := pattern.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	return &Handler{
		id:       uuid.NewString(),
		Method:   strings.ToUpper(method),
		Path:     path,
		Respond:  respond,
		compiled: p,
	}, nil
}

// MustNew is New for handlers known valid at author time.
func MustNew(method, path string, respond Responder) *Handler {
	h, err := New(method, path, respond)
	if err != nil {
		panic(err)
	}
	return h
}

// Get registers a GET handler that always replies with resp.
func Get(path string, resp *Response) *Handler {
	return MustNew("GET", path, Static(resp))
}

// Post registers a POST handler that always replies with resp.
func Post(path string, resp *Response) *Handler {
	return MustNew("POST", path, Static(resp))
}

// Put registers a PUT handler that always replies with resp.
func Put(path string, resp *Response) *Handler {
	return MustNew("PUT", path, Static(resp))
}

// Patch registers a PATCH handler that always replies with resp.
func Patch(path string, resp *Response) *Handler {
	return MustNew("PATCH", path, Static(resp))
}

// Delete registers a DELETE handler that always replies with resp.
func Delete(path string, resp *Response) *Handler {
	return MustNew("DELETE", path, Static(resp))
}

// ID returns the handler's unique identifier.
func (h *Handler) ID() string { return h.id }

// WithCriteria attaches extra match conditions and returns the handler for
// chaining during construction.
func (h *Handler) WithCriteria(c *Criteria) *Handler {
	h.Match = c
	return h
}

// WithValidation attaches request validation rules and returns the handler
// for chaining during construction.
func (h *Handler) WithValidation(v *validation.RequestValidation) *Handler {
	h.Validation = v
	return h
}

// MatchPath reports whether path matches the handler's compiled pattern,
// returning any bound parameters.
func (h *Handler) MatchPath(path string) (map[string]string, bool) {
	return h.compiled.Match(path)
}

// MatchMethod reports whether the handler answers the given method.
func (h *Handler) MatchMethod(method string) bool {
	return strings.EqualFold(h.Method, method)
}

// Static returns a responder that always replies with a copy of resp.
// Each dispatch gets its own copy so concurrent callers cannot observe
// shared mutations.
func Static(resp *Response) Responder {
	return func(*Request) (*Response, error) {
		return resp.Clone(), nil
	}
}

// Delay wraps a responder so its response carries an artificial latency.
func Delay(d time.Duration, respond Responder) Responder {
	return func(req *Request) (*Response, error) {
		resp, err := respond(req)
		if err != nil {
			return nil, err
		}
		resp.Delay = d
		return resp, nil
	}
}
