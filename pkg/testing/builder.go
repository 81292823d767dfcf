package testing

import (
	"time"

	"github.com/interceptd/interceptd/pkg/handler"
)

// Builder configures one override handler using a fluent API. Terminate the
// chain with Register (or Respond for a custom responder).
type Builder struct {
	icpt    *Interceptor
	method  string
	path    string
	status  int
	body    []byte
	headers []string // alternating name, value; order preserved
	delay   time.Duration
	match   *handler.Criteria
}

// Status sets the response status code. Default is 200.
func (b *Builder) Status(status int) *Builder {
	b.status = status
	return b
}

// Body sets a raw response body.
func (b *Builder) Body(body string) *Builder {
	b.body = []byte(body)
	return b
}

// JSON sets a JSON response body and Content-Type.
func (b *Builder) JSON(v any) *Builder {
	resp := handler.JSON(b.status, v)
	b.body = resp.Body
	return b.Header("Content-Type", "application/json")
}

// Header adds a response header. Repeated calls preserve order.
func (b *Builder) Header(name, value string) *Builder {
	b.headers = append(b.headers, name, value)
	return b
}

// Delay adds artificial latency to the response.
func (b *Builder) Delay(d time.Duration) *Builder {
	b.delay = d
	return b
}

// MatchHeader requires a request header value for this handler to match.
func (b *Builder) MatchHeader(name, value string) *Builder {
	b.criteria().Headers[name] = value
	return b
}

// MatchQuery requires a query parameter value for this handler to match.
func (b *Builder) MatchQuery(name, value string) *Builder {
	b.criteria().Query[name] = value
	return b
}

// MatchBodyContains requires the request body to contain a substring.
func (b *Builder) MatchBodyContains(substr string) *Builder {
	b.criteria().BodyContains = substr
	return b
}

// When attaches an expression predicate evaluated against the captured
// request.
func (b *Builder) When(expression string) *Builder {
	b.criteria().When = expression
	return b
}

func (b *Builder) criteria() *handler.Criteria {
	if b.match == nil {
		b.match = &handler.Criteria{
			Headers: make(map[string]string),
			Query:   make(map[string]string),
		}
	}
	return b.match
}

// Register builds the handler from the configured response and adds it to
// the override layer.
func (b *Builder) Register() {
	b.icpt.t.Helper()

	resp := handler.NewResponse(b.status)
	resp.Body = b.body
	for i := 0; i+1 < len(b.headers); i += 2 {
		resp.Header.Add(b.headers[i], b.headers[i+1])
	}
	resp.Delay = b.delay

	b.register(handler.Static(resp))
}

// Respond registers the handler with a custom responder instead of a static
// response. Response settings configured on the builder are ignored.
func (b *Builder) Respond(respond handler.Responder) {
	b.icpt.t.Helper()
	b.register(respond)
}

func (b *Builder) register(respond handler.Responder) {
	b.icpt.t.Helper()

	h, err := handler.New(b.method, b.path, respond)
	if err != nil {
		b.icpt.t.Fatalf("invalid handler %s %s: %v", b.method, b.path, err)
	}
	if !b.match.Empty() {
		h = h.WithCriteria(b.match)
	}
	b.icpt.h.Use(h)
}
