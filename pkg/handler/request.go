package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is an immutable snapshot of an intercepted outgoing request,
// handed to responders. Mutating it has no effect on the original call: the
// body is copied and the headers and query values are cloned.
type Request struct {
	// Method is the HTTP method, upper-cased.
	Method string

	// Path is the URL path component.
	Path string

	// Params holds values bound by named pattern segments. Populated by the
	// registry after a handler matches; nil before matching and for exact
	// patterns.
	Params map[string]string

	// Query holds the parsed query parameters.
	Query url.Values

	// Header holds a copy of the request headers.
	Header http.Header

	// Body is the full request body. Empty slice for bodyless requests.
	Body []byte

	ctx context.Context
}

// Snapshot captures an *http.Request into a Request. The body, if any, is
// fully read; callers that still need the original body must restore it
// themselves.
func Snapshot(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		_ = r.Body.Close()
		body = b
	}

	return &Request{
		Method: strings.ToUpper(r.Method),
		Path:   r.URL.Path,
		Query:  cloneValues(r.URL.Query()),
		Header: r.Header.Clone(),
		Body:   body,
		ctx:    r.Context(),
	}, nil
}

// NewRequest builds a Request directly, for dispatching without an
// *http.Request (tests, the render CLI).
func NewRequest(method, target string, body []byte) (*Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &Request{
		Method: strings.ToUpper(method),
		Path:   path,
		Query:  u.Query(),
		Header: make(http.Header),
		Body:   body,
		ctx:    context.Background(),
	}, nil
}

// Context returns the context of the intercepted call. Responders that
// simulate latency should honor its cancellation.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of the request using ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	c := *r
	c.ctx = ctx
	return &c
}

// JSON unmarshals the request body into v.
func (r *Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Param returns the value bound to a named pattern segment, or "".
func (r *Request) Param(name string) string {
	return r.Params[name]
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
