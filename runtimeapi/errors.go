package runtimeapi

import "errors"

// Sentinel errors classify every control-plane failure mode from the error
// taxonomy. Callers use errors.Is against these rather than inspecting
// *url.Error or *http.Response directly — the client never leaks those
// concrete types across its API boundary.
var (
	// ErrTransport indicates an underlying socket/HTTP failure (dial,
	// write, read, or connection reset).
	ErrTransport = errors.New("runtimeapi: transport error")

	// ErrProtocol indicates a malformed or missing required header, or a
	// status other than the one the call expects (200 for next, 202 for the
	// response and error posts).
	ErrProtocol = errors.New("runtimeapi: protocol error")

	// ErrTimeout indicates the configured per-call request timeout
	// elapsed before the control plane responded.
	ErrTimeout = errors.New("runtimeapi: timeout")

	// ErrCancelled indicates the context the caller passed in was itself
	// cancelled (e.g. a stop signal interrupting an idle next() long-poll),
	// as distinct from a per-call REQUEST_TIMEOUT elapsing. Callers treat
	// this as a clean stop request, never as a transport failure.
	ErrCancelled = errors.New("runtimeapi: context cancelled")

	// ErrInitialization indicates a failure before the first successful
	// next() call — a configuration that fails to load (such as a missing
	// endpoint), an unknown stop signal, or no registered handler.
	ErrInitialization = errors.New("runtimeapi: initialization error")
)
