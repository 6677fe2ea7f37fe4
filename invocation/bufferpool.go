package invocation

import (
	"bytes"
	"sync"
)

// BufferPool is a sync.Pool-backed allocator for the byte buffers handed to
// handler code, adapted from the HTTP-body buffer pool idiom. It is
// scheduler-local: a buffer obtained from one invocation's Context must be
// read/written and returned before that invocation's Context is discarded.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool returns an empty BufferPool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
}

// Get returns a reset, ready-to-use buffer, reusing a pooled one if available.
func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Put returns buf to the pool for reuse.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	p.pool.Put(buf)
}
