package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response describes the synthesized response for an intercepted request.
type Response struct {
	// StatusCode is the HTTP status. 0 is treated as 200.
	StatusCode int

	// Header holds the response headers, insertion order preserved.
	Header Header

	// Body is the raw response body.
	Body []byte

	// Delay is an artificial latency applied before the response is
	// delivered. The harness honors the request context while waiting.
	Delay time.Duration
}

// NewResponse returns a Response with the given status and no body.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status}
}

// Text returns a text/plain response.
func Text(status int, body string) *Response {
	r := &Response{StatusCode: status, Body: []byte(body)}
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// JSON returns an application/json response with v marshaled as the body.
// Marshal failures panic: a response literal that cannot be encoded is a
// programming error in the test, not a runtime condition.
func JSON(status int, v any) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("handler.JSON: marshal body: %v", err))
	}
	r := &Response{StatusCode: status, Body: data}
	r.Header.Set("Content-Type", "application/json")
	return r
}

// Status returns the effective status code, defaulting to 200.
func (r *Response) Status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// WithHeader sets a header and returns the response for chaining.
func (r *Response) WithHeader(name, value string) *Response {
	r.Header.Set(name, value)
	return r
}

// WithDelay sets an artificial latency and returns the response for
// chaining.
func (r *Response) WithDelay(d time.Duration) *Response {
	r.Delay = d
	return r
}

// Clone returns an independent copy of the response.
func (r *Response) Clone() *Response {
	c := &Response{
		StatusCode: r.StatusCode,
		Delay:      r.Delay,
	}
	if h := r.Header.Clone(); h != nil {
		c.Header = *h
	}
	c.Body = append([]byte(nil), r.Body...)
	return c
}
