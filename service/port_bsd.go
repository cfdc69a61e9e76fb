//go:build darwin || netbsd || freebsd || openbsd || dragonfly

package service

import (
	"syscall"
	"unsafe"

	corenet "github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/internal/kq"
	"github.com/cloudweave/corenet/netaddr"
)

type bsdPort struct {
	port *kq.Port
}

func newPlatformPort(opts Options, onDone func(rawCompletion)) (platformPort, error) {
	port, err := kq.NewPort(func(c kq.Completion) {
		onDone(translateKQCompletion(c))
	})
	if err != nil {
		return nil, err
	}
	return &bsdPort{port: port}, nil
}

func (p *bsdPort) submitRead(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitRead(fd, buf, block)
}

func (p *bsdPort) submitWrite(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitWrite(fd, buf, block)
}

func (p *bsdPort) submitReceiveFrom(fd int, buf []byte, block unsafe.Pointer) {
	p.port.SubmitReceiveFrom(fd, buf, block)
}

func (p *bsdPort) submitSendTo(fd int, remote netaddr.Endpoint, buf []byte, block unsafe.Pointer) {
	p.port.SubmitSendTo(fd, rawFromEndpoint(remote), buf, block)
}

func (p *bsdPort) submitConnect(fd int, remote netaddr.Endpoint, block unsafe.Pointer) {
	p.port.SubmitConnect(fd, rawFromEndpoint(remote), block)
}

func (p *bsdPort) submitAccept(fd int, block unsafe.Pointer) {
	p.port.SubmitAccept(fd, block)
}

func (p *bsdPort) close() error { return p.port.Close() }

// rawFromEndpoint/endpointFromRawBSD use internal/kq's own wire
// convention (see kq/sockaddr.go), distinct from the Linux side's raw
// kernel sockaddr bytes since this never crosses a syscall boundary
// directly — kq converts it to a syscall.Sockaddr itself.
func rawFromEndpoint(e netaddr.Endpoint) []byte {
	ip := e.Addr.IP()
	if v4 := ip.To4(); v4 != nil {
		raw := make([]byte, 7)
		raw[0] = 4
		raw[1] = byte(e.Port >> 8)
		raw[2] = byte(e.Port)
		copy(raw[3:7], v4)
		return raw
	}
	raw := make([]byte, 23)
	raw[0] = 6
	raw[1] = byte(e.Port >> 8)
	raw[2] = byte(e.Port)
	copy(raw[3:19], ip.To16())
	zone := e.Addr.Zone()
	raw[19] = byte(zone >> 24)
	raw[20] = byte(zone >> 16)
	raw[21] = byte(zone >> 8)
	raw[22] = byte(zone)
	return raw
}

func endpointFromRawBSD(raw []byte) netaddr.Endpoint {
	if len(raw) < 1 {
		return netaddr.Endpoint{}
	}
	switch raw[0] {
	case 4:
		if len(raw) < 7 {
			return netaddr.Endpoint{}
		}
		port := uint16(raw[1])<<8 | uint16(raw[2])
		addr, ok := netaddr.AddressFromIP(append([]byte(nil), raw[3:7]...))
		if !ok {
			return netaddr.Endpoint{}
		}
		return netaddr.Endpoint{Addr: addr, Port: port, Protocol: netaddr.UDP}
	case 6:
		if len(raw) < 23 {
			return netaddr.Endpoint{}
		}
		port := uint16(raw[1])<<8 | uint16(raw[2])
		zone := uint32(raw[19])<<24 | uint32(raw[20])<<16 | uint32(raw[21])<<8 | uint32(raw[22])
		addr, ok := netaddr.IPv6WithZone(append([]byte(nil), raw[3:19]...), zone)
		if !ok {
			return netaddr.Endpoint{}
		}
		return netaddr.Endpoint{Addr: addr, Port: port, Protocol: netaddr.UDP}
	default:
		return netaddr.Endpoint{}
	}
}

func translateKQCompletion(c kq.Completion) rawCompletion {
	rc := rawCompletion{block: (*ioblock.Block)(c.Block), kind: opKind(c.Kind), status: statusFromSyscallErr(c.Err)}
	if c.Err == nil {
		switch rc.kind {
		case opAccept:
			rc.acceptedFd = c.Res
		default:
			rc.n = c.Res
		}
	}
	if len(c.From) > 0 {
		rc.peer = endpointFromRawBSD(c.From)
	}
	return rc
}

func statusFromSyscallErr(err error) corenet.Code {
	switch err {
	case nil:
		return corenet.CodeOK
	case syscall.ECANCELED, syscall.EINTR:
		return corenet.CodeCanceled
	case syscall.ECONNREFUSED:
		return corenet.CodeConnectionRefused
	case syscall.EPIPE:
		return corenet.CodeBrokenPipe
	case syscall.EADDRNOTAVAIL:
		return corenet.CodeAddressNotAvailable
	case syscall.EMSGSIZE:
		return corenet.CodeMessageSize
	case syscall.EADDRINUSE:
		return corenet.CodeAddressInUse
	case syscall.EBADF:
		return corenet.CodeBadFileDescriptor
	case syscall.ENOMEM:
		return corenet.CodeNotEnoughMemory
	default:
		return corenet.CodeCanceled
	}
}
