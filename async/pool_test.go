package async

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(2)

	var inFlight atomic.Int32
	var maxSeen atomic.Int32
	done := make(chan struct{}, 5)

	for i := 0; i < 5; i++ {
		err := p.Submit(context.Background(), func() {
			n := inFlight.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			done <- struct{}{}
		})
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		<-done
	}
	assert.LessOrEqual(t, maxSeen.Load(), int32(2))
}

func TestPool_SubmitRespectsContextCancellation(t *testing.T) {
	p := NewPool(1)
	block := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		<-block
	}))
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPool_DefaultsNonPositiveCapacity(t *testing.T) {
	p := NewPool(0)
	assert.Equal(t, DefaultOffloadCapacity, cap(p.sem))
}
