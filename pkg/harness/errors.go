package harness

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by Start when interception is already
// installed. Call Stop first to restart.
var ErrAlreadyStarted = errors.New("harness already started")

// UnhandledRequestError reports an intercepted request that matched no
// handler in either layer. It is always surfaced as a failed request, never
// passed through to the real network, so a missing mock fails the test
// loudly.
type UnhandledRequestError struct {
	Method string
	Path   string
}

func (e *UnhandledRequestError) Error() string {
	return fmt.Sprintf("no handler registered for %s %s", e.Method, e.Path)
}

// ResponderError reports that a matched responder itself failed (returned an
// error or panicked). It is distinct from a responder returning an error
// status, which is a valid simulated response.
type ResponderError struct {
	Method string
	Path   string
	Err    error
}

func (e *ResponderError) Error() string {
	return fmt.Sprintf("responder for %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *ResponderError) Unwrap() error { return e.Err }
