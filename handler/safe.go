package handler

import (
	"fmt"

	"github.com/dmitrymomot/fnruntime/async"
	"github.com/dmitrymomot/fnruntime/handler/codec"
	"github.com/dmitrymomot/fnruntime/invocation"
)

// SafeFunc is a Safe-tier handler function: it receives a continuation
// (complete) instead of returning a value directly, and is expected to
// block if it needs to. The wrapper trampolines it onto the offload pool so
// the networking scheduler is never occupied by it (invariant 5).
type SafeFunc[In, Out any] func(ctx *invocation.Context, in In, complete func(Out, error))

// NewSafeHandler wraps fn with dec/enc and pool to produce a ByteHandler
// whose Invoke offloads fn onto pool and resolves once fn calls complete.
// Calling complete more than once is safe: only the first call is kept
// (Future's first-wins guarantee).
func NewSafeHandler[In, Out any](fn SafeFunc[In, Out], dec codec.Decoder[In], enc codec.Encoder[Out], pool *async.Pool) ByteHandler {
	return &safeHandler[In, Out]{fn: fn, dec: dec, enc: enc, pool: pool}
}

// NewSafeStringHandler is closure sugar for a Safe handler over identity
// string codecs.
func NewSafeStringHandler(fn SafeFunc[string, string], pool *async.Pool) ByteHandler {
	dec, enc := codec.String()
	return NewSafeHandler(fn, dec, enc, pool)
}

// NewSafeJSONHandler is closure sugar for a Safe handler over JSON codecs.
func NewSafeJSONHandler[In, Out any](fn SafeFunc[In, Out], pool *async.Pool) ByteHandler {
	dec, _ := codec.JSON[In]()
	_, enc := codec.JSON[Out]()
	return NewSafeHandler(fn, dec, enc, pool)
}

type safeHandler[In, Out any] struct {
	fn   SafeFunc[In, Out]
	dec  codec.Decoder[In]
	enc  codec.Encoder[Out]
	pool *async.Pool
}

func (h *safeHandler[In, Out]) Invoke(ctx *invocation.Context, payload []byte) *async.Future[[]byte] {
	outer := async.NewFuture[[]byte]()

	in, err := h.dec(payload)
	if err != nil {
		outer.Fulfil(nil, &DecodeError{Cause: err})
		return outer
	}

	inner := async.NewFuture[Out]()
	complete := func(out Out, completeErr error) {
		inner.Fulfil(out, completeErr)
	}

	submitErr := h.pool.Submit(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				var zero Out
				complete(zero, fmt.Errorf("panic in safe handler: %v", r))
			}
		}()
		h.fn(ctx, in, complete)
	})
	if submitErr != nil {
		outer.Fulfil(nil, &HandlerError{Cause: submitErr})
		return outer
	}

	go h.resolve(ctx, inner, outer)

	return outer
}

// resolve awaits the user's completion signal and encodes the result onto
// outer. It runs on its own goroutine rather than the networking scheduler,
// which only ever awaits outer directly.
func (h *safeHandler[In, Out]) resolve(ctx *invocation.Context, inner *async.Future[Out], outer *async.Future[[]byte]) {
	out, err := inner.Await(ctx)
	if err != nil {
		outer.Fulfil(nil, &HandlerError{Cause: err})
		return
	}

	buf := ctx.Buffers().Get()
	defer ctx.Buffers().Put(buf)

	body, err := h.enc(buf, out)
	if err != nil {
		outer.Fulfil(nil, &EncodeError{Cause: err})
		return
	}
	outer.Fulfil(body, nil)
}
