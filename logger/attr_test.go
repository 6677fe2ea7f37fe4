package logger

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("nil error returns empty attr", func(t *testing.T) {
		attr := Error(nil)
		assert.Equal(t, slog.Attr{}, attr)
	})

	t.Run("non-nil error returns error attr", func(t *testing.T) {
		err := errors.New("boom")
		attr := Error(err)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, err, attr.Value.Any())
	})
}

func TestErrors(t *testing.T) {
	t.Run("all nil returns empty attr", func(t *testing.T) {
		attr := Errors(nil, nil)
		assert.Equal(t, slog.Attr{}, attr)
	})

	t.Run("mixed nil and non-nil preserves order", func(t *testing.T) {
		err1 := errors.New("first")
		err2 := errors.New("second")
		attr := Errors(err1, nil, err2)
		assert.Equal(t, "errors", attr.Key)

		group := attr.Value.Group()
		assert.Len(t, group, 2)
		assert.Equal(t, "0", group[0].Key)
		assert.Equal(t, "2", group[1].Key)
	})
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, slog.Attr{}, RequestID(""))
	assert.Equal(t, slog.String("request_id", "req-1"), RequestID("req-1"))
}

func TestTraceID(t *testing.T) {
	assert.Equal(t, slog.Attr{}, TraceID(""))
	assert.Equal(t, slog.String("trace_id", "trace-1"), TraceID("trace-1"))
}

func TestDuration(t *testing.T) {
	attr := Duration(5 * time.Second)
	assert.Equal(t, "duration", attr.Key)
	assert.Equal(t, 5*time.Second, attr.Value.Duration())
}

func TestElapsed(t *testing.T) {
	start := time.Now().Add(-100 * time.Millisecond)
	attr := Elapsed(start)
	assert.Equal(t, "elapsed", attr.Key)
	assert.GreaterOrEqual(t, attr.Value.Duration(), 100*time.Millisecond)
}

func TestComponentAndEvent(t *testing.T) {
	assert.Equal(t, slog.String("component", "runner"), Component("runner"))
	assert.Equal(t, slog.String("event", "cycle_start"), Event("cycle_start"))
}

func TestCaller(t *testing.T) {
	attr := Caller()
	assert.Equal(t, "caller", attr.Key)
	assert.Contains(t, attr.Value.String(), "attr_test.go")
}
