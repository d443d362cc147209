package queue

import "sync"

// syncPool is a generic wrapper around sync.Pool, cutting allocation
// churn on the hot send/recv entry path by recycling SendEntry and
// RecvWaiter structs instead of allocating one per call. Unlike a bare
// sync.Pool, it owns the reset step: a pooled SendEntry or RecvWaiter
// holds a live *os.File and a callback closure, and a caller that
// forgot to clear either before Put would leak the file past its
// Drain/Shutdown call or risk a stale Cb firing on the next unrelated
// use of that slot. Centralizing reset here means send_queue.go and
// recv_queue.go can't get that step wrong independently.
type syncPool[T any] struct {
	pool  *sync.Pool
	reset func(T)
}

func newSyncPool[T any](create func() T, reset func(T)) *syncPool[T] {
	return &syncPool[T]{
		pool:  &sync.Pool{New: func() any { return create() }},
		reset: reset,
	}
}

func (p *syncPool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put resets v before returning it to the pool.
func (p *syncPool[T]) Put(v T) {
	p.reset(v)
	p.pool.Put(v)
}
