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
	"unsafe"

	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
)

// Receive-like operations (receive, receive_from, accept) charge
// outstandingRecv; send-like operations (send, send_to, connect)
// charge outstandingSend. spec.md §4.5 names only "per-socket
// outstanding_recv/outstanding_send atomics" without enumerating which
// operation charges which side; this is the natural reading, grouping
// by which direction of the socket the operation occupies.

// StartReceive submits a connected-socket receive into buf.
func (s *Socket) StartReceive(b *ioblock.Block, buf []byte) {
	ioblock.StoreResult[ioblock.ReceiveResult](b)
	if !s.acquireRecv() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingRecv
	s.svc.SubmitRead(s.net.Fd(), buf, b)
}

// StartSend submits a connected-socket send of buf.
func (s *Socket) StartSend(b *ioblock.Block, buf []byte) {
	ioblock.StoreResult[ioblock.SendResult](b)
	if !s.acquireSend() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingSend
	s.svc.SubmitWrite(s.net.Fd(), buf, b)
}

// StartReceiveFrom submits a datagram receive into buf, capturing the
// sender's endpoint on completion.
func (s *Socket) StartReceiveFrom(b *ioblock.Block, buf []byte) {
	ioblock.StoreResult[ioblock.ReceiveFromResult](b)
	if !s.acquireRecv() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingRecv
	s.svc.SubmitReceiveFrom(s.net.Fd(), buf, b)
}

// StartSendTo submits a datagram send of buf to remote.
func (s *Socket) StartSendTo(b *ioblock.Block, remote netaddr.Endpoint, buf []byte) {
	ioblock.StoreResult[ioblock.SendToResult](b)
	if !s.acquireSend() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingSend
	s.svc.SubmitSendTo(s.net.Fd(), remote, buf, b)
}

// StartConnect submits an outbound connect to remote.
func (s *Socket) StartConnect(b *ioblock.Block, remote netaddr.Endpoint) {
	ioblock.StoreResult[ioblock.ConnectResult](b)
	if !s.acquireSend() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingSend
	s.svc.SubmitConnect(s.net.Fd(), remote, b)
}

// StartAccept submits an accept on the listening socket.
func (s *Socket) StartAccept(b *ioblock.Block) {
	ioblock.StoreResult[ioblock.AcceptResult](b)
	if !s.acquireRecv() {
		s.failWouldBlock(b)
		return
	}
	b.Socket = unsafe.Pointer(s)
	b.Outstanding = &s.outstandingRecv
	s.svc.SubmitAccept(s.net.Fd(), b)
}

// failWouldBlock implements spec.md §4.5's back-pressure contract: a
// submit that would exceed the configured cap is not rejected
// synchronously, it is delivered via the error queue with a
// would_block-style status, exactly as if the platform itself had
// reported it. The caller already reserved the matching result slot
// via StoreResult before checking the cap.
func (s *Socket) failWouldBlock(b *ioblock.Block) {
	b.Status = corenet.CodeWouldBlock
	s.svc.EnqueueError(b)
}
