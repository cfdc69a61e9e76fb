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

package asocket

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/internal/connstate"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/service"
)

// state is the socket's position in spec.md §4.5's
// closed/opened/async state machine.
type state uint32

const (
	stateClosed state = iota
	stateOpened
	stateAsync
)

// Socket is an async-capable wrapper around a native netaddr.Socket.
// It owns the handle, the service it is associated with, per-socket
// context, the outstanding receive/send counters, and a half-close
// detector — exactly C6's described fields.
type Socket struct {
	mu  sync.Mutex
	st  state
	net *netaddr.Socket
	svc *service.Service

	maxRecv, maxSend int32
	outstandingRecv  int32
	outstandingSend  int32

	ctx     unsafe.Pointer
	ctxType uint64

	tracker connstate.Tracker
}

// Open creates a new, unbound, unassociated socket for protocol/family.
func Open(protocol netaddr.Protocol, family netaddr.Family) (*Socket, error) {
	ns, err := netaddr.NewSocket(protocol, family)
	if err != nil {
		return nil, err
	}
	return &Socket{net: ns, st: stateOpened}, nil
}

// fromNetSocket wraps an already-open native socket (an accepted
// connection) as an opened, unassociated Socket.
func fromNetSocket(ns *netaddr.Socket) *Socket {
	return &Socket{net: ns, st: stateOpened}
}

// Fd returns the underlying raw file descriptor.
func (s *Socket) Fd() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net == nil {
		return -1
	}
	return s.net.Fd()
}

// Bind binds the socket to ep. Valid only before association.
func (s *Socket) Bind(ep netaddr.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net == nil {
		return corenet.CodeBadFileDescriptor
	}
	return s.net.Bind(ep)
}

// Listen marks a bound stream socket passive with the given backlog.
func (s *Socket) Listen(backlog int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net == nil {
		return corenet.CodeBadFileDescriptor
	}
	return s.net.Listen(backlog)
}

// LocalEndpoint returns the address the socket is bound to.
func (s *Socket) LocalEndpoint() (netaddr.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net == nil {
		return netaddr.Endpoint{}, corenet.CodeBadFileDescriptor
	}
	return s.net.LocalEndpoint()
}

// Associate binds the socket to svc with the given back-pressure caps.
// It is one-time: a second call fails with CodeAlreadyAssociated, and
// calling it on an unopened socket fails with CodeBadFileDescriptor.
func (s *Socket) Associate(svc *service.Service, maxOutstandingReceives, maxOutstandingSends int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.net == nil || s.st == stateClosed {
		return corenet.CodeBadFileDescriptor
	}
	if s.st == stateAsync {
		return corenet.CodeAlreadyAssociated
	}
	s.svc = svc
	s.maxRecv = maxOutstandingReceives
	s.maxSend = maxOutstandingSends
	s.st = stateAsync
	return nil
}

// State reports the half-close/broken-pipe detector's current state,
// as last updated by Observe.
func (s *Socket) State() connstate.State {
	return s.tracker.State()
}

// Close transitions the socket to closed and releases its fd. Per
// spec.md §4.5, no outstanding operations may remain at this
// transition — the caller (typically after a worker has drained every
// completion for this socket) is responsible for that ordering; Close
// itself does not block waiting for them.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateClosed {
		return nil
	}
	s.tracker.Close()
	s.st = stateClosed
	if s.net == nil {
		return nil
	}
	return s.net.Close()
}

// acquireRecv increments outstandingRecv if doing so would not exceed
// maxRecv, reporting whether it succeeded. A successful call's
// increment is released automatically by service when the operation
// it was attached to completes (see (*Block).Outstanding).
func (s *Socket) acquireRecv() bool {
	for {
		cur := atomic.LoadInt32(&s.outstandingRecv)
		if cur >= s.maxRecv {
			return false
		}
		if atomic.CompareAndSwapInt32(&s.outstandingRecv, cur, cur+1) {
			return true
		}
	}
}

func (s *Socket) acquireSend() bool {
	for {
		cur := atomic.LoadInt32(&s.outstandingSend)
		if cur >= s.maxSend {
			return false
		}
		if atomic.CompareAndSwapInt32(&s.outstandingSend, cur, cur+1) {
			return true
		}
	}
}

var (
	ctxTypeMu      sync.Mutex
	ctxTypeOf      = map[reflect.Type]uint64{}
	ctxTypeCounter uint64
)

// typeIDFor mirrors ioblock's resultTypeID, duplicated here since that
// one is unexported and this package has its own opaque-context tag
// to assign, independent of ioblock's result-type tags.
func typeIDFor[T any]() uint64 {
	var zero T
	t := reflect.TypeOf(zero)

	ctxTypeMu.Lock()
	defer ctxTypeMu.Unlock()
	if id, ok := ctxTypeOf[t]; ok {
		return id
	}
	id := atomic.AddUint64(&ctxTypeCounter, 1)
	ctxTypeOf[t] = id
	return id
}

// SetContext stores v as s's opaque per-socket context, tagged with
// T's type. Go methods cannot be generic, so context<T> becomes a
// pair of free functions taking the socket explicitly.
func SetContext[T any](s *Socket, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = unsafe.Pointer(v)
	s.ctxType = typeIDFor[T]()
}

// GetContext returns s's context if it was last set with SetContext[T],
// or nil on a tag mismatch or if no context has been set.
func GetContext[T any](s *Socket) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil || s.ctxType != typeIDFor[T]() {
		return nil
	}
	return (*T)(s.ctx)
}
