package async

import "context"

// DefaultOffloadCapacity bounds the number of Safe-handler goroutines
// allowed to run concurrently. Exactly one invocation is ever in flight
// (the networking scheduler never runs two cycles at once), so the offload
// tier only needs enough headroom for a single handler's own internal
// fan-out, not unbounded worker growth.
const DefaultOffloadCapacity = 4

// Pool runs submitted work on a bounded number of goroutines, modeled on the
// semaphore-channel concurrency limiter: a buffered channel whose capacity
// is the limit, acquired before spawning and released on completion.
type Pool struct {
	sem chan struct{}
}

// NewPool returns a Pool that allows at most capacity goroutines to run
// concurrently. A non-positive capacity is rounded up to DefaultOffloadCapacity.
func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultOffloadCapacity
	}
	return &Pool{sem: make(chan struct{}, capacity)}
}

// Submit runs fn on the pool, blocking until a slot is free or ctx is
// cancelled first. If ctx is cancelled before a slot frees up, fn never
// runs and ctx.Err() is returned.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		defer func() { <-p.sem }()
		fn()
	}()
	return nil
}
