// Package agent implements the Runner (one invocation end-to-end), the
// Lifecycle state machine that drives repeated Runner cycles, and the
// Terminator that translates OS signals into cooperative draining.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/fnruntime/handler"
	"github.com/dmitrymomot/fnruntime/invocation"
	"github.com/dmitrymomot/fnruntime/logger"
	"github.com/dmitrymomot/fnruntime/runtimeapi"
)

// Runner executes one invocation end-to-end: fetch, decode, dispatch,
// encode, post. It never holds more than one unit of work, mirroring the
// claim-one/dispatch-one/record-outcome discipline of a single-flight
// queue worker.
type Runner struct {
	client  *runtimeapi.Client
	handler handler.ByteHandler
	buffers *invocation.BufferPool
	log     *logger.Logger
	term    *Terminator
}

// NewRunner builds a Runner over the given control-plane client and
// registered handler. term bounds only the idle next() wait (see
// Terminator.WatchContext); it is never consulted once a cycle is in
// flight, so in-flight invocations and their outcome posts always run to
// completion even after a stop signal arrives.
func NewRunner(client *runtimeapi.Client, h handler.ByteHandler, log *logger.Logger, term *Terminator) *Runner {
	return &Runner{
		client:  client,
		handler: h,
		buffers: invocation.NewBufferPool(),
		log:     log,
		term:    term,
	}
}

// RunOnce runs exactly one cycle. It returns (true, nil) once an invocation
// was dispatched and its outcome posted, (false, nil) if next() was
// cancelled by a stop signal before any work arrived (a clean stop, not a
// failure — the caller observes Terminator.Triggered() on its next loop
// check), and (false, err) if next() failed transport-terminally after one
// retry. Every other failure (decode/encode/handler/outcome-post) is
// handled internally and reported to the control plane, never propagated.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	env, err := r.next(ctx)
	if err != nil {
		if errors.Is(err, runtimeapi.ErrCancelled) {
			return false, nil
		}
		return false, err
	}

	ictx, cancel := invocation.New(ctx, env, r.log, r.buffers)
	defer cancel()

	body, handlerErr := r.invoke(ictx, env.Payload)

	if handlerErr != nil {
		r.postError(ctx, env.RequestID, handlerErr)
		return true, nil
	}

	// A nil/empty body (the "None" case) is posted as an empty respond,
	// never as reportError.
	if err := r.client.Respond(ctx, env.RequestID, body); err != nil {
		// The outcome post itself failed, or arrived after the control
		// plane's deadline and was rejected. Either way the envelope is
		// considered consumed; log and let the next cycle proceed.
		r.log.Warn("respond failed",
			logger.RequestID(env.RequestID), logger.Event("respond_failed"), logger.Error(err))
	}
	return true, nil
}

// next fetches the next envelope. The wait is bounded by r.term: a stop
// signal cancels only this call, never the ctx used for the rest of the
// cycle. TransportError/ProtocolError/Timeout are recovered by retrying
// once; ErrCancelled is never retried, since a stop signal that fires
// during the retry would otherwise block the clean-exit path.
func (r *Runner) next(ctx context.Context) (*runtimeapi.Envelope, error) {
	watched, cancel := r.term.WatchContext(ctx)
	env, err := r.client.Next(watched)
	cancel()
	if err == nil {
		return env, nil
	}
	if errors.Is(err, runtimeapi.ErrCancelled) {
		return nil, err
	}

	r.log.Warn("next() failed, retrying once", logger.Event("next_retry"), logger.Error(err))
	watched, cancel = r.term.WatchContext(ctx)
	env, err = r.client.Next(watched)
	cancel()
	if err != nil {
		if errors.Is(err, runtimeapi.ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("next() failed after retry: %w", err)
	}
	return env, nil
}

// invoke dispatches to the registered handler and recovers a panic from the
// handler tower itself, converting it into a HandlerError outcome rather
// than letting it crash the control-plane connection.
func (r *Runner) invoke(ictx *invocation.Context, payload []byte) (body []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				logger.RequestID(ictx.RequestID()), logger.Error(fmt.Errorf("%v", rec)), logger.Stack())
			err = &handler.HandlerError{Cause: fmt.Errorf("panic: %v", rec)}
		}
	}()

	future := r.handler.Invoke(ictx, payload)
	return future.Await(ictx)
}

func (r *Runner) postError(ctx context.Context, requestID string, handlerErr error) {
	body := runtimeapi.ErrorBody{
		ErrorType:    handler.ErrorType(handlerErr),
		ErrorMessage: handlerErr.Error(),
		StackTrace:   []string{},
	}
	if err := r.client.ReportError(ctx, requestID, body); err != nil {
		r.log.Warn("reportError failed",
			logger.RequestID(requestID), logger.Event("report_error_failed"), logger.Error(err))
	}
}
