package queue

import "unsafe"

// SPMC is a single-producer, multi-consumer intrusive FIFO. Push
// reuses the lock-free SPSC publish path (exactly one producer, so no
// exchange is needed). TryPop is guarded by a spinlock: the SPSC pop
// algorithm keeps consumer-side state (the read cursor) that is only
// safe for one reader at a time, and the source library explicitly
// allows a spinlock here rather than requiring a lock-free
// multi-consumer algorithm.
type SPMC struct {
	core SPSC
	mu   spinLock
}

// NewSPMC builds an empty single-producer/multi-consumer queue.
func NewSPMC(acc HookAccessor) *SPMC {
	q := &SPMC{}
	q.core.acc = acc
	q.core.lastPush = &q.core.stub
	q.core.tail = &q.core.stub
	return q
}

// Push enqueues node. Must only be called by the single producer.
func (q *SPMC) Push(node unsafe.Pointer) {
	q.core.Push(node)
}

// TryPop returns the next node in FIFO order, or nil if empty. Safe
// for any number of concurrent consumers.
func (q *SPMC) TryPop() unsafe.Pointer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.core.TryPop()
}

// IsLockFree reports false: the consumer side spins under a lock.
func (q *SPMC) IsLockFree() bool { return false }
