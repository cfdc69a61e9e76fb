package service

import (
	"sync/atomic"
	"unsafe"

	corenet "github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
)

// opKind records which asocket Start* call a submission came from, so
// the completion callback knows which ioblock result type to fill in.
// It plays the same role the teacher's io_uring opcode constants play
// in internal/iouring, generalized to also cover kqueue, which has no
// opcode of its own.
type opKind uint8

const (
	opRead opKind = iota
	opWrite
	opReceiveFrom
	opSendTo
	opConnect
	opAccept
)

// rawCompletion is the platform-agnostic shape both port_linux.go and
// port_bsd.go translate their native completion into before handing
// it to (*Service).onCompletion.
type rawCompletion struct {
	block      *ioblock.Block
	kind       opKind
	n          int
	peer       netaddr.Endpoint
	acceptedFd int
	status     corenet.Code
}

// platformPort is the minimal surface a Linux or BSD port must offer.
// Both internal/iouring.Port and internal/kq.Port already expose these
// six Submit* operations; port_linux.go/port_bsd.go each wrap one in a
// thin adapter satisfying this interface, converting an Endpoint into
// that port's raw address bytes.
type platformPort interface {
	submitRead(fd int, buf []byte, block unsafe.Pointer)
	submitWrite(fd int, buf []byte, block unsafe.Pointer)
	submitReceiveFrom(fd int, buf []byte, block unsafe.Pointer)
	submitSendTo(fd int, remote netaddr.Endpoint, buf []byte, block unsafe.Pointer)
	submitConnect(fd int, remote netaddr.Endpoint, block unsafe.Pointer)
	submitAccept(fd int, block unsafe.Pointer)
	close() error
}

// onCompletion fills in the Block's typed result and status, then
// surfaces it to a worker exactly as spec.md §4.3's failure model
// requires for both successful and failed completions.
func (s *Service) onCompletion(rc rawCompletion) {
	b := rc.block
	b.Status = rc.status
	switch rc.kind {
	case opRead:
		if r, _ := ioblock.Result[ioblock.ReceiveResult](b); r != nil {
			r.Transferred = rc.n
		}
		// A stream receive that completes with zero bytes means the
		// peer has closed its side: report it as a broken pipe.
		if rc.status == corenet.CodeOK && rc.n == 0 {
			b.Status = corenet.CodeBrokenPipe
		}
	case opWrite:
		if r, _ := ioblock.Result[ioblock.SendResult](b); r != nil {
			r.Transferred = rc.n
		}
	case opReceiveFrom:
		if r, _ := ioblock.Result[ioblock.ReceiveFromResult](b); r != nil {
			r.Transferred = rc.n
			r.Remote = rc.peer
		}
	case opSendTo:
		if r, _ := ioblock.Result[ioblock.SendToResult](b); r != nil {
			r.Transferred = rc.n
		}
	case opConnect:
		ioblock.Result[ioblock.ConnectResult](b)
	case opAccept:
		if r, _ := ioblock.Result[ioblock.AcceptResult](b); r != nil {
			r.Fd = rc.acceptedFd
			r.Remote = rc.peer
		}
	}

	// Outstanding, when set by asocket at submission, implements the
	// per-socket back-pressure cap: it is decremented here regardless
	// of outcome so a later submit can observe room again.
	if b.Outstanding != nil {
		atomic.AddInt32(b.Outstanding, -1)
	}

	// "Skip completion notification": an inline success is dropped
	// back to the pool without ever reaching a worker. A failure still
	// surfaces normally — the caller needs to learn about it somehow,
	// and the error queue/ready path is the only channel that exists.
	if b.SkipNotification() && b.Status == corenet.CodeOK {
		s.ReleaseIO(b)
		return
	}

	s.ready.Push(unsafe.Pointer(b))
	s.wake()
}
