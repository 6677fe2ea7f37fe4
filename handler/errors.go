package handler

import (
	"errors"
	"reflect"
)

// Sentinel errors for the handler-tower failure contract: any error during
// decode produces a DecodingError outcome, during encode an EncodingError
// outcome, and any error from user invoke code propagates as a HandlerError
// outcome carrying the cause's own type name and message.
var (
	ErrDecoding = errors.New("handler: decoding error")
	ErrEncoding = errors.New("handler: encoding error")
	ErrHandler  = errors.New("handler: handler error")
)

// typedError lets the Runner recover the error-post "kind" (errorType)
// without re-deriving it from scratch.
type typedError interface {
	error
	ErrorType() string
}

// DecodeError wraps a decode failure. ErrorType is always "DecodingError".
type DecodeError struct{ Cause error }

func (e *DecodeError) Error() string        { return e.Cause.Error() }
func (e *DecodeError) Unwrap() error        { return e.Cause }
func (e *DecodeError) ErrorType() string    { return "DecodingError" }
func (e *DecodeError) Is(target error) bool { return target == ErrDecoding }

// EncodeError wraps an encode failure. ErrorType is always "EncodingError".
type EncodeError struct{ Cause error }

func (e *EncodeError) Error() string        { return e.Cause.Error() }
func (e *EncodeError) Unwrap() error        { return e.Cause }
func (e *EncodeError) ErrorType() string    { return "EncodingError" }
func (e *EncodeError) Is(target error) bool { return target == ErrEncoding }

// HandlerError wraps an error returned by user invoke code. ErrorType is the
// cause's own type name, so the cloud provider sees the handler's actual
// error class rather than a generic label.
type HandlerError struct{ Cause error }

func (e *HandlerError) Error() string { return e.Cause.Error() }
func (e *HandlerError) Unwrap() error { return e.Cause }

func (e *HandlerError) ErrorType() string {
	if te, ok := e.Cause.(typedError); ok {
		return te.ErrorType()
	}
	t := reflect.TypeOf(e.Cause)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "HandlerError"
	}
	return t.Name()
}

func (e *HandlerError) Is(target error) bool { return target == ErrHandler }

// ErrorType returns the error-post kind for err: "DecodingError",
// "EncodingError", the cause's own type name for a HandlerError, or
// "HandlerError" as a generic fallback for a plain error.
func ErrorType(err error) string {
	if te, ok := err.(typedError); ok {
		return te.ErrorType()
	}
	return "HandlerError"
}
