package queue

import (
	"sync/atomic"
	"unsafe"
)

// unsafe64 is an atomically-accessed *Hook field, used by the
// multi-producer variants to publish the current head with a single
// atomic exchange.
type unsafe64 struct {
	p unsafe.Pointer
}

func (a *unsafe64) store(h *Hook) {
	atomic.StorePointer(&a.p, unsafe.Pointer(h))
}

func (a *unsafe64) load() *Hook {
	return (*Hook)(atomic.LoadPointer(&a.p))
}

func (a *unsafe64) swap(h *Hook) *Hook {
	return (*Hook)(atomic.SwapPointer(&a.p, unsafe.Pointer(h)))
}

func unsafePointer(h *Hook) unsafe.Pointer {
	return unsafe.Pointer(h)
}
