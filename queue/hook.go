package queue

import "unsafe"

// Hook is the intrusive link embedded by value in a caller-owned node.
// Its zero value is the "not enqueued in any queue" state. A node may
// embed more than one Hook to participate in more than one queue at
// once, but a given Hook field may belong to at most one queue at a
// time.
type Hook struct {
	next unsafe.Pointer // *Hook, accessed atomically by all queue variants
}

// HookAccessor locates the Hook embedded in a node by its byte offset,
// computed once at construction time via HookField. Queues never use
// reflection or an interface-based node type; every Push/TryPop call
// resolves the Hook with one pointer addition.
type HookAccessor struct {
	offset uintptr
}

// HookField builds a HookAccessor from a field selector, e.g.:
//
//	type Request struct {
//	    link queue.Hook
//	    ...
//	}
//	acc := queue.HookField(func(r *Request) *queue.Hook { return &r.link })
//
// field is invoked once against a zero-valued *T purely to compute the
// field's offset; it must not read or retain the pointer otherwise.
func HookField[T any](field func(*T) *Hook) HookAccessor {
	var zero T
	base := uintptr(unsafe.Pointer(&zero))
	h := uintptr(unsafe.Pointer(field(&zero)))
	return HookAccessor{offset: h - base}
}

func (a HookAccessor) hookOf(node unsafe.Pointer) *Hook {
	return (*Hook)(unsafe.Add(node, a.offset))
}

func (a HookAccessor) nodeOf(h *Hook) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), -int64(a.offset))
}
