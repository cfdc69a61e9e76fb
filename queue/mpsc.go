package queue

import (
	"sync/atomic"
	"unsafe"
)

// MPSC is a multi-producer, single-consumer intrusive FIFO. Push is
// wait-free for every producer. TryPop is lock-free for the single
// consumer but may transiently observe "empty" while a producer is
// between its head exchange and the follow-up next-pointer store;
// that is the only correct window in which TryPop may return nil with
// a push in flight.
//
// Per-producer order is preserved; interleaving across producers is
// unordered (as is true for any concurrent multi-producer FIFO).
type MPSC struct {
	acc  HookAccessor
	head unsafe64 // atomic *Hook: most recently published node
	tail *Hook     // consumer-private
	stub Hook
}

// NewMPSC builds an empty multi-producer/single-consumer queue whose
// nodes expose their Hook through acc.
func NewMPSC(acc HookAccessor) *MPSC {
	q := &MPSC{acc: acc}
	q.head.store(&q.stub)
	q.tail = &q.stub
	return q
}

func (q *MPSC) pushHook(h *Hook) {
	atomic.StorePointer(&h.next, nil)
	prev := q.head.swap(h)
	atomic.StorePointer(&prev.next, unsafePointer(h))
}

// Push enqueues node. Safe for any number of concurrent producers.
func (q *MPSC) Push(node unsafe.Pointer) {
	q.pushHook(q.acc.hookOf(node))
}

// TryPop returns the next node in FIFO order per producer, or nil if
// none is observable right now. Only the single designated consumer
// goroutine may call TryPop.
func (q *MPSC) TryPop() unsafe.Pointer {
	tail := q.tail
	next := (*Hook)(atomic.LoadPointer(&tail.next))

	if tail == &q.stub {
		if next == nil {
			return nil // genuinely empty
		}
		q.tail = next
		tail = next
		next = (*Hook)(atomic.LoadPointer(&tail.next))
	}

	if next != nil {
		q.tail = next
		return q.acc.nodeOf(tail)
	}

	if tail != q.head.load() {
		// A push is mid-flight: the producer has claimed head but has
		// not yet linked it from the previous node. Report empty; the
		// link will be visible on a later TryPop.
		return nil
	}

	// tail caught up with head: re-seed the stub so the consumer has
	// somewhere to stand, then retry once.
	q.pushHook(&q.stub)
	next = (*Hook)(atomic.LoadPointer(&tail.next))
	if next == nil {
		return nil
	}
	q.tail = next
	return q.acc.nodeOf(tail)
}

// IsLockFree reports true: MPSC never spins or blocks.
func (q *MPSC) IsLockFree() bool { return true }
