// Package harness implements the interception harness: it stands in for the
// HTTP transport during a test run, resolving outgoing requests against a
// two-layer handler registry and synthesizing responses without real I/O.
package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/interceptd/interceptd/pkg/handler"
	"github.com/interceptd/interceptd/pkg/logging"
	"github.com/interceptd/interceptd/pkg/registry"
	"github.com/interceptd/interceptd/pkg/requestlog"
)

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. Dispatch decisions are logged at debug,
// unhandled requests at warn.
func WithLogger(log *slog.Logger) Option {
	return func(h *Harness) { h.log = log }
}

// WithMaxLogEntries bounds the request log.
func WithMaxLogEntries(n int) Option {
	return func(h *Harness) { h.requests = requestlog.NewStore(n) }
}

// Harness intercepts outgoing HTTP requests and answers them from its
// registry. It implements http.RoundTripper; Start installs it as
// http.DefaultTransport so code using the default client is intercepted
// process-wide.
type Harness struct {
	reg      *registry.Registry
	requests *requestlog.Store
	log      *slog.Logger

	mu      sync.Mutex
	started bool
	prev    http.RoundTripper
}

// New returns a harness with an empty registry. Interception is not active
// until Start.
func New(opts ...Option) *Harness {
	h := &Harness{
		reg:      registry.New(),
		requests: requestlog.NewStore(0),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start installs the harness as http.DefaultTransport, saving the previous
// transport for Stop. Returns ErrAlreadyStarted if interception is already
// installed.
func (h *Harness) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}
	h.prev = http.DefaultTransport
	http.DefaultTransport = h
	h.started = true
	h.log.Debug("interception installed")
	return nil
}

// Stop restores the transport saved by Start. Idempotent: stopping a
// harness that is not started is a no-op.
func (h *Harness) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}
	http.DefaultTransport = h.prev
	h.prev = nil
	h.started = false
	h.log.Debug("interception removed")
}

// Started reports whether interception is currently installed.
func (h *Harness) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// SetBase replaces the base handler layer wholesale. Intended for run-level
// setup, before or between test cases.
func (h *Harness) SetBase(handlers ...*handler.Handler) {
	h.reg.SetBase(handlers...)
}

// Use appends handlers to the override layer for the current test case.
func (h *Harness) Use(handlers ...*handler.Handler) {
	h.reg.Use(handlers...)
}

// ResetOverrides clears the override layer, keeping the base layer. Call
// between test cases.
func (h *Harness) ResetOverrides() {
	h.reg.ResetOverrides()
}

// Registry exposes the underlying registry for inspection.
func (h *Harness) Registry() *registry.Registry { return h.reg }

// Requests exposes the request log for assertions.
func (h *Harness) Requests() *requestlog.Store { return h.requests }

// Client returns an http.Client routed through the harness regardless of
// whether Start has installed process-wide interception.
func (h *Harness) Client() *http.Client {
	return &http.Client{Transport: h}
}

// RoundTrip implements http.RoundTripper. The outgoing request is
// snapshotted, dispatched against the registry, and the described response
// is materialized as an *http.Response. Dispatch failures become transport
// errors.
func (h *Harness) RoundTrip(r *http.Request) (*http.Response, error) {
	req, err := handler.Snapshot(r)
	if err != nil {
		return nil, fmt.Errorf("harness: snapshot request: %w", err)
	}

	resp, err := h.Dispatch(req)
	if err != nil {
		return nil, err
	}

	httpResp := &http.Response{
		StatusCode:    resp.Status(),
		Status:        fmt.Sprintf("%d %s", resp.Status(), http.StatusText(resp.Status())),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       r,
	}
	resp.Header.Each(func(name, value string) {
		httpResp.Header.Add(name, value)
	})
	return httpResp, nil
}

// Dispatch resolves a captured request to a response. Returns
// *UnhandledRequestError when no handler matches in either layer and
// *ResponderError when the matched responder fails. A responder returning
// an error status is a normal response, not an error.
func (h *Harness) Dispatch(req *handler.Request) (*handler.Response, error) {
	start := time.Now()
	entry := &requestlog.Entry{
		Method:      req.Method,
		Path:        req.Path,
		QueryString: req.Query.Encode(),
		Headers:     req.Header,
		Body:        string(req.Body),
		BodySize:    len(req.Body),
	}

	m := h.reg.Resolve(req)
	if m == nil {
		err := &UnhandledRequestError{Method: req.Method, Path: req.Path}
		h.log.Warn("unhandled request", "method", req.Method, "path", req.Path)
		entry.Error = err.Error()
		entry.Duration = time.Since(start)
		h.requests.Record(entry)
		return nil, err
	}

	entry.HandlerID = m.Handler.ID()
	entry.Layer = string(m.Layer)
	h.log.Debug("request matched",
		"method", req.Method, "path", req.Path,
		"pattern", m.Handler.Path, "layer", m.Layer)

	scoped := *req
	scoped.Params = m.Params

	resp, err := h.respond(m.Handler, &scoped)
	if err != nil {
		rerr := &ResponderError{Method: req.Method, Path: req.Path, Err: err}
		entry.Error = rerr.Error()
		entry.Duration = time.Since(start)
		h.requests.Record(entry)
		return nil, rerr
	}

	if resp.Delay > 0 {
		if err := wait(&scoped, resp.Delay); err != nil {
			entry.Error = err.Error()
			entry.Duration = time.Since(start)
			h.requests.Record(entry)
			return nil, err
		}
	}

	entry.Status = resp.Status()
	entry.Duration = time.Since(start)
	h.requests.Record(entry)
	return resp, nil
}

// respond runs validation and the responder, converting a responder panic
// into an ordinary error so a broken mock fails its request rather than the
// test process.
func (h *Harness) respond(hd *handler.Handler, req *handler.Request) (resp *handler.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("responder panicked: %v", rec)
		}
	}()

	if !hd.Validation.Empty() {
		result, verr := hd.Validation.Validate(req.Body)
		if verr != nil {
			return nil, verr
		}
		if !result.Valid {
			return handler.JSON(hd.Validation.Status(), map[string]any{
				"error":  "validation_failed",
				"errors": result.Errors,
			}), nil
		}
	}

	return hd.Respond(req)
}

// wait sleeps for the artificial latency of a response, aborting with the
// context's error if the intercepted call is abandoned.
func wait(req *handler.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}
