package queue

import (
	"sync/atomic"
	"unsafe"
)

// SPSC is a single-producer, single-consumer intrusive FIFO. Unlike
// MPSC, a single producer never contends with itself, so publishing a
// new node is one release-store instead of an exchange — there is no
// transient "empty" window while a push is in flight: by the time
// TryPop can observe the new tail link, the full push has already
// completed.
//
// Exactly one goroutine may call Push and exactly one (possibly
// different) goroutine may call TryPop; concurrent calls on the same
// side are undefined, per the package contract.
type SPSC struct {
	acc      HookAccessor
	stub     Hook
	lastPush *Hook // producer-private: tail of the producer's chain
	tail     *Hook // consumer-private: current read position
}

// NewSPSC builds an empty single-producer/single-consumer queue.
func NewSPSC(acc HookAccessor) *SPSC {
	q := &SPSC{acc: acc}
	q.lastPush = &q.stub
	q.tail = &q.stub
	return q
}

// Push enqueues node. Must only be called by the single producer.
func (q *SPSC) Push(node unsafe.Pointer) {
	h := q.acc.hookOf(node)
	atomic.StorePointer(&h.next, nil)
	atomic.StorePointer(&q.lastPush.next, unsafe.Pointer(h)) // release: publish link
	q.lastPush = h
}

// TryPop returns the next node in FIFO order, or nil if the queue is
// empty. Must only be called by the single consumer.
func (q *SPSC) TryPop() unsafe.Pointer {
	tail := q.tail
	next := (*Hook)(atomic.LoadPointer(&tail.next)) // acquire: see producer's release

	if tail == &q.stub {
		if next == nil {
			return nil
		}
		q.tail = next
		return q.TryPop()
	}

	if next == nil {
		return nil
	}
	q.tail = next
	return q.acc.nodeOf(tail)
}

// IsLockFree reports true: SPSC is a pure release/acquire handoff.
func (q *SPSC) IsLockFree() bool { return true }
