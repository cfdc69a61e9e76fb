package queue

import "unsafe"

// Stack is a single-threaded intrusive LIFO. It offers no concurrency
// guarantees at all — unlike the FIFO family, Stack is not safe for
// concurrent Push/TryPop from any combination of goroutines.
type Stack struct {
	acc HookAccessor
	top *Hook
}

// NewStack builds an empty intrusive stack.
func NewStack(acc HookAccessor) *Stack {
	return &Stack{acc: acc}
}

// Push links node at the top of the stack.
func (s *Stack) Push(node unsafe.Pointer) {
	h := s.acc.hookOf(node)
	h.next = unsafe.Pointer(s.top)
	s.top = h
}

// TryPop unlinks and returns the top node, or nil if the stack is
// empty.
func (s *Stack) TryPop() unsafe.Pointer {
	if s.top == nil {
		return nil
	}
	h := s.top
	s.top = (*Hook)(h.next)
	return s.acc.nodeOf(h)
}
