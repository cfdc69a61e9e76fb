package queue

import "unsafe"

// MPMC is a multi-producer, multi-consumer intrusive FIFO. The source
// library explicitly permits "a simple internal spin-lock around the
// SPSC core" for this variant rather than requiring a lock-free
// algorithm, so MPMC wraps the MPSC core (itself already safe for any
// number of producers) with a spinlock around TryPop to additionally
// allow any number of consumers.
//
// Per-producer FIFO order is preserved; ordering across producers is
// unspecified, matching every other variant in the family.
type MPMC struct {
	core MPSC
	mu   spinLock
}

// NewMPMC builds an empty multi-producer/multi-consumer queue.
func NewMPMC(acc HookAccessor) *MPMC {
	q := &MPMC{}
	q.core.acc = acc
	q.core.head.store(&q.core.stub)
	q.core.tail = &q.core.stub
	return q
}

// Push enqueues node. Safe for any number of concurrent producers.
func (q *MPMC) Push(node unsafe.Pointer) {
	q.core.Push(node)
}

// TryPop returns the next node, or nil if empty. Safe for any number
// of concurrent consumers.
func (q *MPMC) TryPop() unsafe.Pointer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.core.TryPop()
}

// IsLockFree reports false: MPMC's consumer side is spinlock-guarded.
func (q *MPMC) IsLockFree() bool { return false }
