// Package handler implements the three-tier handler abstraction: a lowest
// ByteHandler capability, a Typed layer that decodes/encodes around a
// synchronous user function, and a Safe layer that trampolines a blocking
// user callback onto the offload pool. Each tier is strictly richer than
// the one below it, composed as plain function values rather than an
// inheritance chain.
package handler

import (
	"github.com/dmitrymomot/fnruntime/async"
	"github.com/dmitrymomot/fnruntime/invocation"
)

// ByteHandler is the lowest tier: raw bytes in, optional raw bytes out. The
// returned Future may already be fulfilled (a Typed handler completes
// inline, on the networking scheduler) or may resolve later (a Safe
// handler's offloaded work).
type ByteHandler interface {
	Invoke(ctx *invocation.Context, payload []byte) *async.Future[[]byte]
}

// ByteHandlerFunc adapts a plain function to ByteHandler.
type ByteHandlerFunc func(ctx *invocation.Context, payload []byte) *async.Future[[]byte]

// Invoke implements ByteHandler.
func (f ByteHandlerFunc) Invoke(ctx *invocation.Context, payload []byte) *async.Future[[]byte] {
	return f(ctx, payload)
}
