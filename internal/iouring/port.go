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

package iouring

import "unsafe"

// Port is the Linux completion port package service drives: a
// ring-backed event loop plus typed Submit helpers that stash a
// *ioblock.Block (passed through as unsafe.Pointer to avoid this
// package depending on ioblock's exported API) as the operation's
// user data.
type Port struct {
	evl *IOUringEventLoop
}

// NewPort starts a ring sized per cfg; onDone is invoked for every
// completed operation that was submitted through one of Port's
// Submit* methods.
func NewPort(cfg *Config, onDone func(Completion)) (*Port, error) {
	evl, err := NewIOUringEventLoop(cfg, onDone)
	if err != nil {
		return nil, err
	}
	return &Port{evl: evl}, nil
}

// Close tears the port down.
func (p *Port) Close() error { return p.evl.Close() }

func (p *Port) submit(ud *userData, block unsafe.Pointer) {
	ud.SetBlock(block)
	p.evl.Submit(ud)
}

// SubmitRead submits a connected-socket read.
func (p *Port) SubmitRead(fd int, buf []byte, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetReadOp(int32(fd), buf)
	p.submit(ud, block)
}

// SubmitWrite submits a connected-socket write.
func (p *Port) SubmitWrite(fd int, buf []byte, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetWriteOp(int32(fd), buf)
	p.submit(ud, block)
}

// SubmitReceiveFrom submits a datagram receive that also captures the
// sender's address (see Completion.Peer).
func (p *Port) SubmitReceiveFrom(fd int, buf []byte, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetReceiveFromOp(int32(fd), buf)
	p.submit(ud, block)
}

// SubmitSendTo submits a datagram send to addr (raw sockaddr bytes).
func (p *Port) SubmitSendTo(fd int, addr []byte, buf []byte, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetSendToOp(int32(fd), addr, buf)
	p.submit(ud, block)
}

// SubmitConnect submits an outbound connect to addr.
func (p *Port) SubmitConnect(fd int, addr []byte, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetConnectOp(int32(fd), addr)
	p.submit(ud, block)
}

// SubmitAccept submits an accept on the listening fd.
func (p *Port) SubmitAccept(fd int, block unsafe.Pointer) {
	ud := userDataPoolGet()
	ud.SetAcceptOp(int32(fd))
	p.submit(ud, block)
}
