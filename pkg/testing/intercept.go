// Package testing provides a test helper around the interception harness.
// It wires harness lifecycle into testing.TB: interception is installed on
// New and removed automatically when the test completes.
package testing

import (
	"net/http"
	"testing"

	"github.com/interceptd/interceptd/pkg/harness"
	"github.com/interceptd/interceptd/pkg/requestlog"
)

// Interceptor drives a harness inside a test. Create one per test (or per
// test run via TestMain) with New.
type Interceptor struct {
	t testing.TB
	h *harness.Harness
}

// New builds a harness, installs interception and registers cleanup that
// removes it when the test completes.
func New(t testing.TB, opts ...harness.Option) *Interceptor {
	t.Helper()

	h := harness.New(opts...)
	if err := h.Start(); err != nil {
		t.Fatalf("failed to install interception: %v", err)
	}
	t.Cleanup(h.Stop)

	return &Interceptor{t: t, h: h}
}

// Harness returns the underlying harness for advanced use.
func (i *Interceptor) Harness() *harness.Harness { return i.h }

// Client returns an http.Client routed through the harness. Code using
// http.DefaultClient is already intercepted; this is for components that
// take an injected client.
func (i *Interceptor) Client() *http.Client { return i.h.Client() }

// On begins a fluent override registration for the given method and path
// pattern:
//
//	i.On("GET", "/api/users/{id}").JSON(user).Register()
func (i *Interceptor) On(method, path string) *Builder {
	i.t.Helper()
	return &Builder{icpt: i, method: method, path: path, status: http.StatusOK}
}

// Reset clears the override layer and the request log between test cases.
// The base layer persists.
func (i *Interceptor) Reset() {
	i.t.Helper()
	i.h.ResetOverrides()
	i.h.Requests().Clear()
}

// Requests returns logged dispatches, newest first.
func (i *Interceptor) Requests() []*requestlog.Entry {
	return i.h.Requests().List(nil)
}

// AssertCalled fails the test unless method/path was dispatched at least
// once.
func (i *Interceptor) AssertCalled(method, path string) {
	i.t.Helper()
	if n := i.countCalls(method, path); n == 0 {
		i.t.Errorf("expected %s %s to be called, but it was not", method, path)
	}
}

// AssertCalledTimes fails the test unless method/path was dispatched
// exactly times times.
func (i *Interceptor) AssertCalledTimes(method, path string, times int) {
	i.t.Helper()
	if n := i.countCalls(method, path); n != times {
		i.t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, n)
	}
}

// AssertNotCalled fails the test if method/path was dispatched.
func (i *Interceptor) AssertNotCalled(method, path string) {
	i.t.Helper()
	if n := i.countCalls(method, path); n > 0 {
		i.t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, n)
	}
}

func (i *Interceptor) countCalls(method, path string) int {
	return i.h.Requests().Count(&requestlog.Filter{Method: method, Path: path})
}
