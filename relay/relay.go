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

package relay

import (
	"encoding/binary"
	"sync"

	"github.com/cloudweave/corenet/asocket"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/service"
)

// sessionIDSize is the length of the session-id prefix spec.md §4.7
// describes: the first 8 bytes of every datagram on either port.
const sessionIDSize = 8

// Relay owns the allocation endpoint, the relayed endpoint, and the
// session map between them, per spec.md §4.7.
type Relay struct {
	svc  *service.Service
	opts Options

	allocation *asocket.Socket
	relayed    *asocket.Socket

	mu       sync.Mutex
	sessions map[uint64]netaddr.Endpoint
}

// New opens and binds the allocation and relayed sockets as UDP
// datagram sockets, associates both with svc, and returns a Relay
// ready for Start.
func New(svc *service.Service, allocationAddr, relayedAddr netaddr.Endpoint, opts Options) (*Relay, error) {
	allocation, err := asocket.Open(netaddr.UDP, allocationAddr.Addr.Family())
	if err != nil {
		return nil, err
	}
	if err := allocation.Bind(allocationAddr); err != nil {
		allocation.Close()
		return nil, err
	}
	if err := allocation.Associate(svc, opts.MaxOutstandingReceives, opts.MaxOutstandingSends); err != nil {
		allocation.Close()
		return nil, err
	}

	relayed, err := asocket.Open(netaddr.UDP, relayedAddr.Addr.Family())
	if err != nil {
		allocation.Close()
		return nil, err
	}
	if err := relayed.Bind(relayedAddr); err != nil {
		allocation.Close()
		relayed.Close()
		return nil, err
	}
	if err := relayed.Associate(svc, opts.MaxOutstandingReceives, opts.MaxOutstandingSends); err != nil {
		allocation.Close()
		relayed.Close()
		return nil, err
	}

	return &Relay{
		svc:        svc,
		opts:       opts,
		allocation: allocation,
		relayed:    relayed,
		sessions:   make(map[uint64]netaddr.Endpoint),
	}, nil
}

// Close releases both sockets.
func (r *Relay) Close() error {
	err1 := r.allocation.Close()
	err2 := r.relayed.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Start posts the first receive on each port; every subsequent
// receive is reposted as HandleCompletion drains the one it replaces.
func (r *Relay) Start() {
	r.postReceive(r.allocation)
	r.postReceive(r.relayed)
}

func (r *Relay) postReceive(sock *asocket.Socket) {
	b := r.svc.MakeIO(nil, 0)
	size := r.opts.ReceiveBufferSize
	if size <= 0 || size > b.Capacity() {
		size = b.Capacity()
	}
	b.SetWindow(0, size)
	sock.StartReceiveFrom(b, b.Window())
}

// HandleCompletion dispatches a drained completion to the allocation
// or relayed handler based on which socket submitted it, and is a
// no-op for completions from sockets this Relay does not own.
func (r *Relay) HandleCompletion(b *ioblock.Block) {
	sock := (*asocket.Socket)(b.Socket)
	switch sock {
	case r.allocation:
		r.handleAllocation(b)
	case r.relayed:
		r.handleRelayed(b)
	}
}

// handleAllocation records the sender's endpoint against the 8-byte id
// it sent, then always reposts the same io for the next receive — the
// allocation port never sends anything back.
func (r *Relay) handleAllocation(b *ioblock.Block) {
	if res, err := ioblock.Result[ioblock.ReceiveFromResult](b); res != nil && err == nil && res.Transferred >= sessionIDSize {
		id := binary.BigEndian.Uint64(b.Window()[:sessionIDSize])
		r.mu.Lock()
		r.sessions[id] = res.Remote
		r.mu.Unlock()
	}

	size := r.opts.ReceiveBufferSize
	if size <= 0 || size > b.Capacity() {
		size = b.Capacity()
	}
	b.SetWindow(0, size)
	r.allocation.StartReceiveFrom(b, b.Window())
}

// handleRelayed implements the forward algorithm: a receive whose
// prefix matches a known session moves the same io through a send to
// the mapped client, while a fresh io is posted immediately for the
// next receive so the relayed port is never left unable to receive
// while a forward is in flight. A send completion (the other half of
// that cycle) simply releases the io — its replacement receive was
// already posted at forward time. A receive with no session match is
// recycled directly into another receive on the same io.
func (r *Relay) handleRelayed(b *ioblock.Block) {
	if sent, _ := ioblock.Result[ioblock.SendToResult](b); sent != nil {
		r.svc.ReleaseIO(b)
		return
	}

	res, err := ioblock.Result[ioblock.ReceiveFromResult](b)
	if res != nil && err == nil && res.Transferred >= sessionIDSize {
		id := binary.BigEndian.Uint64(b.Window()[:sessionIDSize])
		r.mu.Lock()
		client, ok := r.sessions[id]
		r.mu.Unlock()
		if ok {
			payload := b.Window()[:res.Transferred]
			r.postReceive(r.relayed)
			r.relayed.StartSendTo(b, client, payload)
			return
		}
	}

	size := r.opts.ReceiveBufferSize
	if size <= 0 || size > b.Capacity() {
		size = b.Capacity()
	}
	b.SetWindow(0, size)
	r.relayed.StartReceiveFrom(b, b.Window())
}
