//go:build linux

package service

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"

	corenet "github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/internal/iouring"
	"github.com/cloudweave/corenet/netaddr"
)

type linuxPort struct {
	port *iouring.Port
}

func newPlatformPort(opts Options, onDone func(rawCompletion)) (platformPort, error) {
	cfg := iouring.DefaultConfig()
	cfg.IOUringQueueSize = opts.QueueDepth
	cfg.SQEBatchSize = opts.SubmitBatchSize
	cfg.SQESubmitInterval = opts.SubmitInterval

	port, err := iouring.NewPort(cfg, func(c iouring.Completion) {
		onDone(translateIOUringCompletion(c))
	})
	if err != nil {
		return nil, err
	}
	return &linuxPort{port: port}, nil
}

func (p *linuxPort) submitRead(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitRead(fd, buf, block)
}

func (p *linuxPort) submitWrite(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitWrite(fd, buf, block)
}

func (p *linuxPort) submitReceiveFrom(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitReceiveFrom(fd, buf, block)
}

func (p *linuxPort) submitSendTo(fd int, remote netaddr.Endpoint, buf []byte, block unsafe.Pointer) {
	p.port.SubmitSendTo(fd, rawSockaddrFromEndpoint(remote), buf, block)
}

func (p *linuxPort) submitConnect(fd int, remote netaddr.Endpoint, block unsafe.Pointer) {
	p.port.SubmitConnect(fd, rawSockaddrFromEndpoint(remote), block)
}

func (p *linuxPort) submitAccept(fd int, block unsafe.Pointer) {
	p.port.SubmitAccept(fd, block)
}

func (p *linuxPort) close() error { return p.port.Close() }

// rawSockaddrFromEndpoint builds the raw struct sockaddr_in/in6 bytes
// the kernel expects, the same wire the msghdr.Name field inside
// internal/iouring's userData points at.
func rawSockaddrFromEndpoint(e netaddr.Endpoint) []byte {
	ip := e.Addr.IP()
	if v4 := ip.To4(); v4 != nil {
		raw := make([]byte, 16)
		binary.LittleEndian.PutUint16(raw[0:2], 2) // AF_INET
		binary.BigEndian.PutUint16(raw[2:4], e.Port)
		copy(raw[4:8], v4)
		return raw
	}
	raw := make([]byte, 28)
	binary.LittleEndian.PutUint16(raw[0:2], 10) // AF_INET6
	binary.BigEndian.PutUint16(raw[2:4], e.Port)
	copy(raw[8:24], ip.To16())
	binary.LittleEndian.PutUint32(raw[24:28], e.Addr.Zone())
	return raw
}

// endpointFromRaw parses a captured struct sockaddr_in/in6 back into
// an Endpoint. raw may be longer than the address actually written;
// only the family field determines how much of it to read.
func endpointFromRaw(raw []byte) netaddr.Endpoint {
	if len(raw) < 4 {
		return netaddr.Endpoint{}
	}
	family := binary.LittleEndian.Uint16(raw[0:2])
	port := binary.BigEndian.Uint16(raw[2:4])
	switch family {
	case 2: // AF_INET
		if len(raw) < 8 {
			return netaddr.Endpoint{}
		}
		addr, ok := netaddr.AddressFromIP(append([]byte(nil), raw[4:8]...))
		if !ok {
			return netaddr.Endpoint{}
		}
		return netaddr.Endpoint{Addr: addr, Port: port, Protocol: netaddr.UDP}
	case 10: // AF_INET6
		if len(raw) < 28 {
			return netaddr.Endpoint{}
		}
		zone := binary.LittleEndian.Uint32(raw[24:28])
		addr, ok := netaddr.IPv6WithZone(append([]byte(nil), raw[8:24]...), zone)
		if !ok {
			return netaddr.Endpoint{}
		}
		return netaddr.Endpoint{Addr: addr, Port: port, Protocol: netaddr.UDP}
	default:
		return netaddr.Endpoint{}
	}
}

func translateIOUringCompletion(c iouring.Completion) rawCompletion {
	rc := rawCompletion{block: (*ioblock.Block)(c.Block), status: statusFromRes(c.Res)}
	switch c.Opcode {
	case iouring.IORING_OP_READV, iouring.IORING_OP_READ:
		rc.kind = opRead
	case iouring.IORING_OP_WRITEV, iouring.IORING_OP_WRITE:
		rc.kind = opWrite
	case iouring.IORING_OP_RECVMSG:
		rc.kind = opReceiveFrom
		rc.peer = endpointFromRaw(c.Peer)
	case iouring.IORING_OP_SENDMSG:
		rc.kind = opSendTo
	case iouring.IORING_OP_CONNECT:
		rc.kind = opConnect
	case iouring.IORING_OP_ACCEPT:
		rc.kind = opAccept
		rc.peer = endpointFromRaw(c.Peer)
	}
	if c.Res > 0 {
		switch rc.kind {
		case opAccept:
			rc.acceptedFd = int(c.Res)
		default:
			rc.n = int(c.Res)
		}
	}
	return rc
}

// statusFromRes maps an io_uring CQE result (0 or positive on success,
// -errno on failure) to the module's error taxonomy.
func statusFromRes(res int32) corenet.Code {
	if res >= 0 {
		return corenet.CodeOK
	}
	return statusFromErrno(unix.Errno(-res))
}

// statusFromErrno maps a raw errno to the module's error taxonomy.
// Unrecognized errnos map to CodeCanceled, matching a cancellation
// being the most common "something else went wrong" completion status.
func statusFromErrno(errno unix.Errno) corenet.Code {
	switch errno {
	case unix.EAGAIN:
		return corenet.CodeWouldBlock
	case unix.ECANCELED, unix.EINTR:
		return corenet.CodeCanceled
	case unix.ECONNREFUSED:
		return corenet.CodeConnectionRefused
	case unix.EPIPE:
		return corenet.CodeBrokenPipe
	case unix.EADDRNOTAVAIL:
		return corenet.CodeAddressNotAvailable
	case unix.EMSGSIZE:
		return corenet.CodeMessageSize
	case unix.EADDRINUSE:
		return corenet.CodeAddressInUse
	case unix.EBADF:
		return corenet.CodeBadFileDescriptor
	case unix.ENOMEM:
		return corenet.CodeNotEnoughMemory
	default:
		return corenet.CodeCanceled
	}
}
