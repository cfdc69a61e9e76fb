package queue

import (
	"runtime"
	"sync/atomic"
)

// spinLock is a minimal test-and-test-and-set spinlock. The source
// library guards its error queue and multi-consumer queue variants
// with a spinlock rather than a full mutex on the assumption that the
// critical section is a handful of pointer writes; we keep that shape
// here instead of reaching for sync.Mutex, which would also be
// correct but changes the documented contention behavior.
type spinLock struct {
	state uint32
}

func (l *spinLock) Lock() {
	for !atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		for atomic.LoadUint32(&l.state) != 0 {
			runtime.Gosched()
		}
	}
}

func (l *spinLock) Unlock() {
	atomic.StoreUint32(&l.state, 0)
}
