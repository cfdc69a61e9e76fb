package queue

// Move transfers every node currently in src to dst, preserving order,
// and leaves src empty.
//
// The source library expresses this as an unsynchronized move
// constructor/assignment, which for a self-referential intrusive
// structure (the sentry/stub node lives inside the queue's own memory)
// would require rewriting every in-flight pointer that targets the
// old stub address. Go gives queues no way to relocate themselves in
// memory safely, so Move is instead a drain-and-refill: semantically
// identical to the source's contract (dst ends up with src's prior
// contents in order, src ends up empty) without assuming anything
// about either queue's internal pointer layout.
//
// As with the source's move, Move is not synchronized: the caller
// must ensure no other goroutine touches src or dst while Move runs.
func Move(dst, src Queue) {
	for {
		n := src.TryPop()
		if n == nil {
			return
		}
		dst.Push(n)
	}
}
