package storage

import (
	"sync"
	"weak"
)

// BufferPool is a thread-safe pool of slot buffers for callers that stand up
// a short-lived SlotStorage per unit of work.
//
// Buffers are held through weak pointers, so the garbage collector may
// reclaim any pooled buffer at any time; before reuse a strong pointer is
// recovered while removing the entry from the pool, and Release turns the
// buffer back into a weak entry. The collector therefore sizes the pool
// automatically under memory pressure.
type BufferPool struct {
	pool  []weak.Pointer[PooledBuffer]
	sizes map[uint64]*pooledBufferSize
	mu    sync.Mutex

	defaultSize int
}

// pooledBufferSize tracks the required buffer size across the last 50
// releases for one key.
type pooledBufferSize struct {
	count      int
	totalBytes int
}

// PooledBuffer wraps a slot buffer for use in the pool.
type PooledBuffer struct {
	Buf []byte
	Key uint64
}

// BufferPoolOption configures a BufferPool.
type BufferPoolOption func(*BufferPool)

// WithDefaultBufferSize sets the size used for a key that has no recorded
// history yet.
func WithDefaultBufferSize(size int) BufferPoolOption {
	return func(p *BufferPool) {
		p.defaultSize = size
	}
}

// NewBufferPool creates a new BufferPool.
func NewBufferPool(opts ...BufferPoolOption) *BufferPool {
	p := &BufferPool{
		sizes:       make(map[uint64]*pooledBufferSize),
		defaultSize: 1024 * 1024,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire gets a buffer from the pool or allocates a new one if none are
// available. The key identifies the use case so buffer sizes can be tuned
// per call site.
func (p *BufferPool) Acquire(key uint64) *PooledBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.pool) > 0 {
		lastIdx := len(p.pool) - 1
		wp := p.pool[lastIdx]
		p.pool = p.pool[:lastIdx]

		v := wp.Value()
		if v != nil {
			v.Key = key
			return v
		}
		// Weak pointer was collected, try the next entry.
	}

	return &PooledBuffer{
		Buf: make([]byte, p.bufferSize(key)),
		Key: key,
	}
}

// Release returns a buffer to the pool for reuse, recording its size to tune
// future allocations for the same key.
func (p *BufferPool) Release(item *PooledBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if size, ok := p.sizes[item.Key]; ok {
		if size.count == 50 {
			size.count = 1
			size.totalBytes = size.totalBytes / 50
		}
		size.count++
		size.totalBytes += len(item.Buf)
	} else {
		p.sizes[item.Key] = &pooledBufferSize{
			count:      1,
			totalBytes: len(item.Buf),
		}
	}

	item.Key = 0

	w := weak.Make(item)
	p.pool = append(p.pool, w)
}

// bufferSize returns the buffer size to allocate for a key.
func (p *BufferPool) bufferSize(key uint64) int {
	if size, ok := p.sizes[key]; ok {
		return size.totalBytes / size.count
	}
	return p.defaultSize
}
