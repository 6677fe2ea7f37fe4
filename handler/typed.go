package handler

import (
	"github.com/dmitrymomot/fnruntime/async"
	"github.com/dmitrymomot/fnruntime/handler/codec"
	"github.com/dmitrymomot/fnruntime/invocation"
)

// TypedFunc is a scheduler-bound handler function: parametric over input
// type In and output type Out, running synchronously on the networking
// scheduler. User code registered this way MUST NOT block (invariant 5 is
// enforced by convention here, not by the runtime — blocking code belongs
// in a Safe handler instead).
type TypedFunc[In, Out any] func(ctx *invocation.Context, in In) (Out, error)

// NewTypedHandler wraps fn with dec/enc to produce a ByteHandler: decode on
// entry, encode on exit, mirroring the generic TaskHandlerFunc[T]
// registration pattern generalized to a typed return value.
func NewTypedHandler[In, Out any](fn TypedFunc[In, Out], dec codec.Decoder[In], enc codec.Encoder[Out]) ByteHandler {
	return &typedHandler[In, Out]{fn: fn, dec: dec, enc: enc}
}

// NewStringHandler is closure sugar for a Typed handler over identity
// string codecs: registering `func(ctx, string) (string, error)` directly
// installs a Typed handler.
func NewStringHandler(fn TypedFunc[string, string]) ByteHandler {
	dec, enc := codec.String()
	return NewTypedHandler(fn, dec, enc)
}

// NewJSONHandler is closure sugar for a Typed handler over JSON codecs for
// In and Out.
func NewJSONHandler[In, Out any](fn TypedFunc[In, Out]) ByteHandler {
	dec, _ := codec.JSON[In]()
	_, enc := codec.JSON[Out]()
	return NewTypedHandler(fn, dec, enc)
}

type typedHandler[In, Out any] struct {
	fn  TypedFunc[In, Out]
	dec codec.Decoder[In]
	enc codec.Encoder[Out]
}

func (h *typedHandler[In, Out]) Invoke(ctx *invocation.Context, payload []byte) *async.Future[[]byte] {
	f := async.NewFuture[[]byte]()

	in, err := h.dec(payload)
	if err != nil {
		f.Fulfil(nil, &DecodeError{Cause: err})
		return f
	}

	out, err := h.fn(ctx, in)
	if err != nil {
		f.Fulfil(nil, &HandlerError{Cause: err})
		return f
	}

	buf := ctx.Buffers().Get()
	defer ctx.Buffers().Put(buf)

	body, err := h.enc(buf, out)
	if err != nil {
		f.Fulfil(nil, &EncodeError{Cause: err})
		return f
	}

	f.Fulfil(body, nil)
	return f
}
