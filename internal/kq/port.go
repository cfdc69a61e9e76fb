//go:build darwin || netbsd || freebsd || openbsd || dragonfly

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

package kq

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/cloudweave/corenet/queue"
)

// fdState holds the two pending intrusive lists for one descriptor,
// exactly spec's "two pending intrusive lists (retry-on-EAGAIN for
// receive/send respectively)".
type fdState struct {
	recv *queue.MPSC
	send *queue.MPSC
}

// Port is the kqueue-backed completion port. Submissions queue a
// request and arm the descriptor; the background loop goroutine
// performs the actual syscall once kqueue reports readiness, retrying
// on EAGAIN by leaving the request queued.
type Port struct {
	fd     int
	onDone func(Completion)

	mu     sync.Mutex
	states map[int]*fdState
	closed bool
}

// NewPort opens a kqueue and starts its draining goroutine. onDone is
// invoked once per resolved request, from the draining goroutine.
func NewPort(onDone func(Completion)) (*Port, error) {
	fd, err := syscall.Kqueue()
	if err != nil {
		return nil, err
	}
	p := &Port{fd: fd, onDone: onDone, states: make(map[int]*fdState)}
	go p.loop()
	return p, nil
}

// Close tears down the kqueue. In-flight requests are not drained;
// callers are expected to have canceled their sockets first.
func (p *Port) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return syscall.Close(p.fd)
}

func (p *Port) stateFor(fd int) *fdState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.states[fd]
	if !ok {
		st = &fdState{
			recv: queue.NewMPSC(requestHookAccessor()),
			send: queue.NewMPSC(requestHookAccessor()),
		}
		p.states[fd] = st
	}
	return st
}

func (p *Port) register(fd int, filter int16) error {
	ev := syscall.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: syscall.EV_ADD | syscall.EV_ENABLE | syscall.EV_CLEAR}
	_, err := syscall.Kevent(p.fd, []syscall.Kevent_t{ev}, nil, nil)
	return err
}

func (p *Port) enqueue(r *request, filter int16, q *queue.MPSC) {
	q.Push(unsafe.Pointer(r))
	if err := p.register(r.fd, filter); err != nil {
		p.resolve(r, 0, err)
		return
	}
	// Pre-arrival data (or an already-writable socket) resolves inline
	// without waiting for the next kevent — spec.md §8 scenario 2.
	p.drain(r.fd, filter, q)
}

// SubmitRead submits a connected-socket read.
func (p *Port) SubmitRead(fd int, buf []byte, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpRead, buf: buf, block: block}, syscall.EVFILT_READ, st.recv)
}

// SubmitWrite submits a connected-socket write.
func (p *Port) SubmitWrite(fd int, buf []byte, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpWrite, buf: buf, block: block}, syscall.EVFILT_WRITE, st.send)
}

// SubmitReceiveFrom submits a datagram receive that also captures the
// sender's address (see Completion.From).
func (p *Port) SubmitReceiveFrom(fd int, buf []byte, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpReceiveFrom, buf: buf, block: block}, syscall.EVFILT_READ, st.recv)
}

// SubmitSendTo submits a datagram send to addr (raw sockaddr bytes).
func (p *Port) SubmitSendTo(fd int, addr []byte, buf []byte, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpSendTo, buf: buf, addr: addr, block: block}, syscall.EVFILT_WRITE, st.send)
}

// SubmitConnect submits an outbound connect to addr.
func (p *Port) SubmitConnect(fd int, addr []byte, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpConnect, addr: addr, block: block}, syscall.EVFILT_WRITE, st.send)
}

// SubmitAccept submits an accept on the listening fd.
func (p *Port) SubmitAccept(fd int, block unsafe.Pointer) {
	st := p.stateFor(fd)
	p.enqueue(&request{fd: fd, kind: OpAccept, block: block}, syscall.EVFILT_READ, st.recv)
}

func (p *Port) loop() {
	events := make([]syscall.Kevent_t, 256)
	ts := syscall.Timespec{Sec: 0, Nsec: 50 * 1000 * 1000}
	for {
		n, err := syscall.Kevent(p.fd, nil, events, &ts)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			ev := &events[i]
			fd := int(ev.Ident)
			p.mu.Lock()
			st, ok := p.states[fd]
			p.mu.Unlock()
			if !ok {
				continue
			}
			if ev.Filter == syscall.EVFILT_READ {
				p.drain(fd, syscall.EVFILT_READ, st.recv)
			} else if ev.Filter == syscall.EVFILT_WRITE {
				p.drain(fd, syscall.EVFILT_WRITE, st.send)
			}
		}
	}
}

// drain resolves at most one pending request for fd. Only one request
// is attempted per readiness notification: with the outstanding caps
// asocket enforces this is the common case, and re-queuing on EAGAIN
// keeps the remaining order close enough to FIFO for this scaffold.
func (p *Port) drain(fd int, filter int16, q *queue.MPSC) {
	node := q.TryPop()
	if node == nil {
		return
	}
	r := (*request)(node)
	switch r.kind {
	case OpRead:
		n, err := syscall.Read(r.fd, r.buf)
		if err == syscall.EAGAIN {
			q.Push(node)
			return
		}
		p.resolve(r, n, err)
	case OpWrite:
		n, err := syscall.Write(r.fd, r.buf)
		if err == syscall.EAGAIN {
			q.Push(node)
			return
		}
		p.resolve(r, n, err)
	case OpReceiveFrom:
		n, from, err := syscall.Recvfrom(r.fd, r.buf, 0)
		if err == syscall.EAGAIN {
			q.Push(node)
			return
		}
		c := Completion{Block: r.block, Res: n, Err: err, Kind: r.kind, From: sockaddrToRaw(from)}
		p.onDone(c)
	case OpSendTo:
		to, err := rawToSockaddr(r.addr)
		if err == nil {
			err = syscall.Sendto(r.fd, r.buf, 0, to)
		}
		if err == syscall.EAGAIN {
			q.Push(node)
			return
		}
		n := 0
		if err == nil {
			n = len(r.buf)
		}
		p.resolve(r, n, err)
	case OpConnect:
		to, err := rawToSockaddr(r.addr)
		if err == nil {
			err = syscall.Connect(r.fd, to)
			if err == syscall.EISCONN {
				err = nil
			}
		}
		if err == syscall.EAGAIN || err == syscall.EALREADY || err == syscall.EINPROGRESS {
			q.Push(node)
			return
		}
		p.resolve(r, 0, err)
	case OpAccept:
		nfd, from, err := syscall.Accept(r.fd)
		if err == syscall.EAGAIN {
			q.Push(node)
			return
		}
		c := Completion{Block: r.block, Res: nfd, Err: err, Kind: r.kind, From: sockaddrToRaw(from)}
		p.onDone(c)
	}
}

func (p *Port) resolve(r *request, n int, err error) {
	p.onDone(Completion{Block: r.block, Res: n, Err: err, Kind: r.kind})
}
