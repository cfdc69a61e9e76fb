package kq

import (
	"unsafe"

	"github.com/cloudweave/corenet/queue"
)

// OpKind identifies which syscall a pending request resolves to once
// its descriptor is ready.
type OpKind uint8

const (
	OpRead OpKind = iota
	OpWrite
	OpReceiveFrom
	OpSendTo
	OpConnect
	OpAccept
)

// Completion describes one finished operation, handed to Port's onDone
// callback. From is only populated for receive-from and accept.
type Completion struct {
	Block unsafe.Pointer
	Res   int
	Err   error
	Kind  OpKind
	From  []byte
}

// request is the intrusive node queued per descriptor while waiting
// for EVFILT_READ/EVFILT_WRITE. A request is only ever linked into one
// of a fdState's two queues at a time, so one embedded Hook suffices
// for both.
type request struct {
	hook  queue.Hook
	fd    int
	kind  OpKind
	buf   []byte
	addr  []byte // destination for SendTo/Connect, raw sockaddr bytes
	block unsafe.Pointer
}

func requestHookAccessor() queue.HookAccessor {
	return queue.HookField(func(r *request) *queue.Hook { return &r.hook })
}
