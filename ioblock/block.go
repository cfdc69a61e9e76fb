/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ioblock

import (
	"unsafe"

	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/queue"
)

// resultBufSize bounds the inline result union. 160 bytes comfortably
// fits every result type service/asocket store here (an endpoint pair,
// a byte count, an accepted fd) without spilling to a second
// allocation.
const resultBufSize = 160

// payloadSize is chosen so sizeof(Block) lands on TotalSize exactly;
// see the size assertion at the bottom of this file.
const payloadSize = 2048 - 248

// TotalSize is the fixed footprint of a Block: header plus payload.
const TotalSize = 2048

// Block is the fixed-size I/O control block passed between a caller,
// an asocket.Socket, a service.Service and a worker.Worker. Every
// field except the buffer window and the inline result is opaque to
// callers outside this module; asocket and service reach into it
// directly (same module, different package, exported fields) rather
// than through getters, the way the teacher's lower-level packages
// pass typed structs between each other without an accessor layer.
type Block struct {
	// Service is the *service.Service that owns this operation, for
	// resubmission and error routing. Stored as unsafe.Pointer to
	// avoid an import cycle (service imports ioblock for Block
	// itself); service casts it back.
	Service unsafe.Pointer

	// Ctx is the caller-supplied context pointer, stored verbatim and
	// handed back unchanged on completion.
	Ctx unsafe.Pointer

	// CtxType is an opaque tag the caller assigns to Ctx's dynamic
	// type, so it can recover the concrete type without a type
	// registry.
	CtxType uint64

	// Socket is the *asocket.Socket (or platform socket state) this
	// operation targets, set at submission. Also unsafe.Pointer to
	// avoid an asocket<->ioblock import cycle.
	Socket unsafe.Pointer

	resultKind uint64
	result     [resultBufSize]byte

	// Status carries the outcome of the operation once completed.
	// CodeOK until then.
	Status corenet.Code

	beginOff int32
	endOff   int32

	// Outstanding, if non-nil, is decremented by the service when this
	// operation completes, implementing asocket's back-pressure caps.
	Outstanding *int32

	pool     *Pool
	poolHook queue.Hook
	compHook queue.Hook

	payload [payloadSize]byte
}

// skipNotifyBit is resultKind's top bit, set/cleared by
// SetSkipNotification and masked out of every tag comparison in
// result.go. resultKind's tags come from an incrementing counter that
// will never approach 1<<63, so stealing this one bit for the "skip
// completion notification" hint needs no extra field, and with it no
// change to Block's fixed footprint.
const skipNotifyBit = uint64(1) << 63

// SetSkipNotification sets or clears the "skip completion
// notification" hint for this operation: a submitter that sets it is
// telling the service an inline-successful completion should be
// dropped back to the pool directly instead of reaching a worker.
func (b *Block) SetSkipNotification(skip bool) {
	if skip {
		b.resultKind |= skipNotifyBit
	} else {
		b.resultKind &^= skipNotifyBit
	}
}

// SkipNotification reports whether SetSkipNotification(true) was
// called since the last Reset/New.
func (b *Block) SkipNotification() bool {
	return b.resultKind&skipNotifyBit != 0
}

// compile-time assertion that Block's layout matches TotalSize; a
// negative array length is a compile error, so any future field
// addition that changes the footprint fails the build loudly instead
// of silently growing past the cache-line budget.
var _ = [TotalSize - int(unsafe.Sizeof(Block{}))]byte{}
var _ = [int(unsafe.Sizeof(Block{})) - TotalSize]byte{}

// Window returns the block's current buffer view, data[begin:end).
func (b *Block) Window() []byte {
	return b.payload[b.beginOff:b.endOff]
}

// ResetWindow restores the buffer view to the full payload, as it is
// after Pool.New.
func (b *Block) ResetWindow() {
	b.beginOff = 0
	b.endOff = int32(len(b.payload))
}

// SetWindow narrows the buffer view to [begin, end). It panics if the
// bounds fall outside the payload, mirroring the source's assertion
// that data <= begin <= end <= data+data_size always holds.
func (b *Block) SetWindow(begin, end int) {
	if begin < 0 || end < begin || end > len(b.payload) {
		panic("ioblock: window out of bounds")
	}
	b.beginOff = int32(begin)
	b.endOff = int32(end)
}

// Capacity returns the full payload size regardless of the current
// window, i.e. the size the window shrinks from and can grow back to.
func (b *Block) Capacity() int {
	return len(b.payload)
}

// reset clears every field back to the state Pool.New leaves it in,
// so a released and reused Block carries no stale data across
// operations.
func (b *Block) reset() {
	b.Service = nil
	b.Ctx = nil
	b.CtxType = 0
	b.Socket = nil
	b.resultKind = 0
	b.result = [resultBufSize]byte{}
	b.Status = corenet.CodeOK
	b.Outstanding = nil
	b.ResetWindow()
}

// CompletionHookAccessor describes Block's completion/error-queue hook
// field, for building a queue.Queue that carries *Block nodes (used
// by service's error queue and by the platform ports' completion
// queues).
func CompletionHookAccessor() queue.HookAccessor {
	return queue.HookField(func(b *Block) *queue.Hook { return &b.compHook })
}

// freeListHookAccessor describes Block's free-list hook field; kept
// unexported since only Pool ever builds a queue over it.
func freeListHookAccessor() queue.HookAccessor {
	return queue.HookField(func(b *Block) *queue.Hook { return &b.poolHook })
}
