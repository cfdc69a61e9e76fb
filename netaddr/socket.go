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

package netaddr

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/cloudweave/corenet"
)

// Socket owns a raw, non-blocking file descriptor directly, rather
// than wrapping a net.Conn the way the teacher's netx.Conn does —
// package asocket needs the fd to register with a completion service
// before any net.Conn-shaped value would exist.
//
// Socket's operations (Bind/Listen/Connect/Read/Write) are single
// synchronous syscalls on that non-blocking fd: none of them waits for
// readiness, and one that cannot complete at once returns
// corenet.CodeWouldBlock. Socket has no Accept; accepted connections
// reach callers through asocket. These operations exist for setup and
// for the synchronous scaffolding paths (e.g. the relay CLI's initial
// bind); the hot asynchronous path is asocket.Socket, which takes
// ownership of the same fd via Fd.
type Socket struct {
	fd       int
	protocol Protocol
	family   Family
}

// NewSocket creates a socket for the given protocol/family pair but
// does not bind or connect it.
func NewSocket(protocol Protocol, family Family) (*Socket, error) {
	domain := unix.AF_INET
	if family == IPv6 {
		domain = unix.AF_INET6
	}
	typ := unix.SOCK_STREAM
	if protocol == UDP {
		typ = unix.SOCK_DGRAM
	}
	fd, err := unix.Socket(domain, typ, 0)
	if err != nil {
		return nil, mapSyscallErr(err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, mapSyscallErr(err)
	}
	return &Socket{fd: fd, protocol: protocol, family: family}, nil
}

// Fd returns the raw file descriptor, for handing off to asocket.
func (s *Socket) Fd() int { return s.fd }

// Protocol returns the socket's transport.
func (s *Socket) Protocol() Protocol { return s.protocol }

// Family returns the socket's address family.
func (s *Socket) Family() Family { return s.family }

// SocketFromFd wraps an already-open, already-non-blocking file
// descriptor — an accepted connection's fd — in a Socket. asocket uses
// this to build the Socket an AcceptedSocket call returns, since that
// fd already exists by the time asocket sees it and must not be
// reopened.
func SocketFromFd(fd int, protocol Protocol, family Family) *Socket {
	return &Socket{fd: fd, protocol: protocol, family: family}
}

// Close closes the underlying file descriptor.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// Bind binds the socket to ep.
func (s *Socket) Bind(ep Endpoint) error {
	sa, err := toSockaddr(ep)
	if err != nil {
		return err
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return mapSyscallErr(err)
	}
	return nil
}

// Listen marks a bound stream socket as passive, with the given
// accept backlog.
func (s *Socket) Listen(backlog int) error {
	if err := unix.Listen(s.fd, backlog); err != nil {
		return mapSyscallErr(err)
	}
	return nil
}

// Connect connects the socket to ep. For a non-blocking socket this
// may return corenet.CodeWouldBlock while the connection completes in
// the background; callers on the async path use asocket's
// StartConnect instead.
func (s *Socket) Connect(ep Endpoint) error {
	sa, err := toSockaddr(ep)
	if err != nil {
		return err
	}
	if err := unix.Connect(s.fd, sa); err != nil {
		return mapSyscallErr(err)
	}
	return nil
}

// LocalEndpoint returns the address the socket is bound to.
func (s *Socket) LocalEndpoint() (Endpoint, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return Endpoint{}, mapSyscallErr(err)
	}
	return fromSockaddr(sa, s.protocol)
}

// RemoteEndpoint returns the address the socket is connected to.
func (s *Socket) RemoteEndpoint() (Endpoint, error) {
	sa, err := unix.Getpeername(s.fd)
	if err != nil {
		return Endpoint{}, mapSyscallErr(err)
	}
	return fromSockaddr(sa, s.protocol)
}

// Read performs one read on the non-blocking fd, returning
// corenet.CodeWouldBlock when no data is ready; used only by the
// synchronous scaffolding paths, never by asocket.
func (s *Socket) Read(buf []byte) (int, error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		return n, mapSyscallErr(err)
	}
	return n, nil
}

// Write performs one write on the non-blocking fd, returning
// corenet.CodeWouldBlock when the send buffer is full.
func (s *Socket) Write(buf []byte) (int, error) {
	n, err := unix.Write(s.fd, buf)
	if err != nil {
		return n, mapSyscallErr(err)
	}
	return n, nil
}

func toSockaddr(ep Endpoint) (unix.Sockaddr, error) {
	switch ep.Addr.Family() {
	case IPv4:
		var sa unix.SockaddrInet4
		copy(sa.Addr[:], ep.Addr.bytes[:4])
		sa.Port = int(ep.Port)
		return &sa, nil
	case IPv6:
		var sa unix.SockaddrInet6
		copy(sa.Addr[:], ep.Addr.bytes[:16])
		sa.Port = int(ep.Port)
		sa.ZoneId = ep.Addr.zone
		return &sa, nil
	default:
		return nil, fmt.Errorf("netaddr: unknown address family")
	}
}

func fromSockaddr(sa unix.Sockaddr, proto Protocol) (Endpoint, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		var a Address
		a.family = IPv4
		copy(a.bytes[:4], v.Addr[:])
		return Endpoint{Addr: a, Port: uint16(v.Port), Protocol: proto}, nil
	case *unix.SockaddrInet6:
		var a Address
		a.family = IPv6
		copy(a.bytes[:16], v.Addr[:])
		a.zone = v.ZoneId
		return Endpoint{Addr: a, Port: uint16(v.Port), Protocol: proto}, nil
	default:
		return Endpoint{}, fmt.Errorf("netaddr: unsupported sockaddr type")
	}
}

// mapSyscallErr maps an errno from a socket syscall onto the shared
// error taxonomy.
func mapSyscallErr(err error) error {
	switch err {
	case unix.EADDRINUSE:
		return corenet.CodeAddressInUse
	case unix.EADDRNOTAVAIL:
		return corenet.CodeAddressNotAvailable
	case unix.EAGAIN:
		return corenet.CodeWouldBlock
	case unix.EBADF:
		return corenet.CodeBadFileDescriptor
	case unix.ECONNREFUSED:
		return corenet.CodeConnectionRefused
	case unix.EPIPE:
		return corenet.CodeBrokenPipe
	case unix.EMSGSIZE:
		return corenet.CodeMessageSize
	default:
		return err
	}
}
