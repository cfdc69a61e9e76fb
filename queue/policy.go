package queue

import "unsafe"

// Policy selects a queue implementation at construction time. It never
// changes for the lifetime of a queue.
type Policy struct {
	MultiProducer bool
	MultiConsumer bool
}

// The four canonical policies, matching the four queue variants.
var (
	SPSCPolicy = Policy{MultiProducer: false, MultiConsumer: false}
	MPSCPolicy = Policy{MultiProducer: true, MultiConsumer: false}
	SPMCPolicy = Policy{MultiProducer: false, MultiConsumer: true}
	MPMCPolicy = Policy{MultiProducer: true, MultiConsumer: true}
)

func (p Policy) String() string {
	switch p {
	case SPSCPolicy:
		return "spsc"
	case MPSCPolicy:
		return "mpsc"
	case SPMCPolicy:
		return "spmc"
	case MPMCPolicy:
		return "mpmc"
	default:
		return "unknown"
	}
}

// Queue is the uniform surface shared by all four variants. node is
// the address of a caller-owned struct embedding a Hook reachable via
// the HookAccessor the queue was constructed with.
type Queue interface {
	// Push enqueues node. O(1), never fails.
	Push(node unsafe.Pointer)
	// TryPop removes and returns the next node, or nil if none is
	// observable right now.
	TryPop() unsafe.Pointer
	// IsLockFree reports whether this variant's algorithm is lock-free
	// (false for SPMC and MPMC, whose consumer side is spinlock-guarded).
	IsLockFree() bool
}

// New dispatches on p to build the matching variant. Prefer the typed
// constructors (NewSPSC, NewMPSC, ...) when the variant is known at the
// call site; New exists for callers that pick the policy at runtime,
// such as a generic queue-of-queues registry.
func New(p Policy, acc HookAccessor) Queue {
	switch p {
	case SPSCPolicy:
		return NewSPSC(acc)
	case MPSCPolicy:
		return NewMPSC(acc)
	case SPMCPolicy:
		return NewSPMC(acc)
	case MPMCPolicy:
		return NewMPMC(acc)
	default:
		panic("queue: unknown policy " + p.String())
	}
}
