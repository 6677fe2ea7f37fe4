package agent

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fnruntime/config"
	"github.com/dmitrymomot/fnruntime/handler"
	"github.com/dmitrymomot/fnruntime/invocation"
	"github.com/dmitrymomot/fnruntime/logger"
	"github.com/dmitrymomot/fnruntime/runtimeapi"
)

func fixtures(n int) []envelopeFixture {
	out := make([]envelopeFixture, n)
	for i := range out {
		out[i] = envelopeFixture{
			requestID: "req-" + string(rune('1'+i)),
			body:      "x",
			deadline:  time.Now().Add(10 * time.Second),
		}
	}
	return out
}

func echoHandler() handler.ByteHandler {
	return handler.NewStringHandler(func(ctx *invocation.Context, in string) (string, error) {
		return in, nil
	})
}

// S4: bounded run. MAX_REQUESTS=3, control plane serves 5 envelopes.
func TestLifecycle_Run_BoundedByMaxRequests(t *testing.T) {
	fcp := newFakeControlPlane()
	defer fcp.close()
	fcp.envelopes = fixtures(5)

	client := runtimeapi.NewClient(fcp.endpoint())
	term, err := NewTerminator("TERM")
	require.NoError(t, err)

	l, err := NewLifecycle(echoHandler(),
		WithConfig(config.Config{APIEndpoint: fcp.endpoint(), MaxRequests: 3}),
		WithClient(client),
		WithTerminator(term),
		WithLifecycleLogger(logger.NewNop()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code := l.Run(ctx)
	assert.Equal(t, ExitClean, code)
	assert.Len(t, fcp.responds, 3)
	assert.Equal(t, int32(3), fcp.nextCalls.Load())
	assert.Equal(t, StateTerminated, l.State())
}

// S5: signal drain. No MAX_REQUESTS. One envelope served; TERM arrives
// right after respond; expect clean exit and no further next() call.
func TestLifecycle_Run_SignalDrain(t *testing.T) {
	fcp := newFakeControlPlane()
	defer fcp.close()
	fcp.envelopes = fixtures(1)

	term, err := NewTerminator("TERM")
	require.NoError(t, err)
	fcp.onRespond = func() {
		time.Sleep(10 * time.Millisecond) // simulate handler latency before the signal lands
		term.Trigger()
	}

	client := runtimeapi.NewClient(fcp.endpoint())
	l, err := NewLifecycle(echoHandler(),
		WithConfig(config.Config{APIEndpoint: fcp.endpoint()}),
		WithClient(client),
		WithTerminator(term),
		WithLifecycleLogger(logger.NewNop()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code := l.Run(ctx)
	assert.Equal(t, ExitClean, code)
	assert.Len(t, fcp.responds, 1)
	assert.Equal(t, int32(1), fcp.nextCalls.Load())
}

// S6: transport failure. next() returns 500 persistently. Expect retry
// once, then exit code 1, no respond/reportError issued.
func TestLifecycle_Run_TransportFailureExitsWithCode1(t *testing.T) {
	fcp := newFakeControlPlane()
	defer fcp.close()
	fcp.nextStatus = 500

	term, err := NewTerminator("TERM")
	require.NoError(t, err)

	client := runtimeapi.NewClient(fcp.endpoint())
	l, err := NewLifecycle(echoHandler(),
		WithConfig(config.Config{APIEndpoint: fcp.endpoint()}),
		WithClient(client),
		WithTerminator(term),
		WithLifecycleLogger(logger.NewNop()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code := l.Run(ctx)
	assert.Equal(t, ExitTransportFailure, code)
	assert.Empty(t, fcp.responds)
	assert.Empty(t, fcp.reportErrors)
	assert.Equal(t, int32(2), fcp.nextCalls.Load())
	assert.Equal(t, StateTerminated, l.State())
}

func TestNewLifecycle_MissingEndpointFails(t *testing.T) {
	prev, hadPrev := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	os.Unsetenv("AWS_LAMBDA_RUNTIME_API")
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv("AWS_LAMBDA_RUNTIME_API", prev)
		}
	})

	_, err := NewLifecycle(echoHandler())
	require.Error(t, err)
	assert.ErrorIs(t, err, runtimeapi.ErrInitialization)
}

func TestNewLifecycle_UnknownStopSignalFails(t *testing.T) {
	_, err := NewLifecycle(echoHandler(),
		WithConfig(config.Config{APIEndpoint: "127.0.0.1:9001", StopSignal: "BOGUS"}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, runtimeapi.ErrInitialization)
}

func TestNewLifecycle_NilHandlerFails(t *testing.T) {
	_, err := NewLifecycle(nil, WithConfig(config.Config{APIEndpoint: "127.0.0.1:9001"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, runtimeapi.ErrInitialization)
}
