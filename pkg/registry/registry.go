// Package registry holds the process-wide handler registry used by the
// interception harness. Handlers live in two ordered layers: a base layer
// set once per test run and an override layer scoped to a single test case.
package registry

import (
	"sync"

	"github.com/interceptd/interceptd/internal/matching"
	"github.com/interceptd/interceptd/pkg/handler"
)

// Layer identifies which registry layer a handler belongs to.
type Layer string

const (
	LayerBase     Layer = "base"
	LayerOverride Layer = "override"
)

// Match is the result of resolving a request against the registry.
type Match struct {
	Handler *handler.Handler
	Layer   Layer
	// Params holds path parameters bound by the handler's pattern.
	Params map[string]string
}

// Registry is safe for concurrent dispatches. Mutations are expected to
// happen on the test goroutine between dispatches; the lock only keeps a
// mutation from tearing an in-flight scan.
type Registry struct {
	mu       sync.RWMutex
	base     []*handler.Handler
	override []*handler.Handler
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// SetBase replaces the base layer wholesale. In-flight dispatches that
// already hold a snapshot are unaffected.
func (r *Registry) SetBase(handlers ...*handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = append([]*handler.Handler(nil), handlers...)
}

// Use appends handlers to the override layer for the current test case.
func (r *Registry) Use(handlers ...*handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = append(r.override, handlers...)
}

// ResetOverrides clears the override layer. The base layer persists. Call
// between test cases to prevent cross-test leakage.
func (r *Registry) ResetOverrides() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = nil
}

// Handlers returns snapshots of both layers in registration order.
func (r *Registry) Handlers() (base, override []*handler.Handler) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*handler.Handler(nil), r.base...),
		append([]*handler.Handler(nil), r.override...)
}

// Resolve finds the handler for a request: the override layer is consulted
// first, then the base layer. Within a layer the scan runs newest-first, so
// a later registration for the same (method, path) shadows earlier ones.
// Returns nil when no handler matches.
func (r *Registry) Resolve(req *handler.Request) *Match {
	r.mu.RLock()
	override := r.override
	base := r.base
	r.mu.RUnlock()

	if m := scan(override, LayerOverride, req); m != nil {
		return m
	}
	return scan(base, LayerBase, req)
}

func scan(layer []*handler.Handler, name Layer, req *handler.Request) *Match {
	for i := len(layer) - 1; i >= 0; i-- {
		h := layer[i]
		if h == nil || !h.MatchMethod(req.Method) {
			continue
		}
		params, ok := h.MatchPath(req.Path)
		if !ok {
			continue
		}
		if h.Match != nil {
			// Extra criteria see the bound params.
			scoped := *req
			scoped.Params = params
			if !matching.Matches(h.Match, &scoped) {
				continue
			}
		}
		return &Match{Handler: h, Layer: name, Params: params}
	}
	return nil
}
