// Package invocation defines the per-invocation Context the Runner builds
// from an envelope and hands to the handler tower.
package invocation

import (
	"context"
	"time"

	"github.com/dmitrymomot/fnruntime/logger"
	"github.com/dmitrymomot/fnruntime/runtimeapi"
)

// Context is a read-only view of an invocation envelope plus ambient
// resources: a request-scoped logger, the scheduler handle the invocation
// runs on (the embedded context.Context), and a buffer allocator. It is
// immutable for its lifetime and carries no methods that mutate external
// state; logging is the only side effect.
type Context struct {
	context.Context

	requestID          string
	traceID            string
	invokedFunctionARN string
	deadline           time.Time
	cognitoIdentity    string
	clientContext      string

	log     *logger.Logger
	buffers *BufferPool
}

// New builds a Context from an envelope. parent is the networking
// scheduler's context for this cycle. The envelope's deadline is exposed as
// metadata only (InvocationDeadline) and does NOT cancel parent: there is no
// cooperative cancellation API for user handlers (§5); a handler that
// finishes after its deadline still gets its response posted, and the
// control plane is left to reject it. log is pre-bound with the request
// identifier.
func New(parent context.Context, env *runtimeapi.Envelope, log *logger.Logger, buffers *BufferPool) (*Context, context.CancelFunc) {
	return &Context{
		Context:            parent,
		requestID:          env.RequestID,
		traceID:            env.TraceID,
		invokedFunctionARN: env.InvokedFunctionARN,
		deadline:           env.Deadline,
		cognitoIdentity:    env.CognitoIdentity,
		clientContext:      env.ClientContext,
		log:                log.With(logger.RequestID(env.RequestID), logger.TraceID(env.TraceID)),
		buffers:            buffers,
	}, func() {}
}

// RequestID returns the invocation's request identifier.
func (c *Context) RequestID() string { return c.requestID }

// TraceID returns the invocation's tracing identifier, or "" if absent.
func (c *Context) TraceID() string { return c.traceID }

// InvokedFunctionARN returns the invoked-function identifier, or "" if absent.
func (c *Context) InvokedFunctionARN() string { return c.invokedFunctionARN }

// InvocationDeadline returns the absolute response deadline the control
// plane attached to this invocation, and whether one was set. Named
// distinctly from the embedded context.Context's own Deadline method, which
// this Context does not override: the invocation deadline is metadata, not
// a cancellation point.
func (c *Context) InvocationDeadline() (time.Time, bool) { return c.deadline, !c.deadline.IsZero() }

// CognitoIdentity returns the optional mobile-SDK identity blob.
func (c *Context) CognitoIdentity() string { return c.cognitoIdentity }

// ClientContextBlob returns the optional client-context blob. Named
// distinctly from the embedded context.Context to avoid ambiguity.
func (c *Context) ClientContextBlob() string { return c.clientContext }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *logger.Logger { return c.log }

// Buffers returns the invocation's buffer allocator.
func (c *Context) Buffers() *BufferPool { return c.buffers }
