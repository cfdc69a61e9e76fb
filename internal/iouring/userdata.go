package iouring

import (
	"sync"
	"unsafe"
)

const UserDataMagic = 0x494E4458494F5552 // "INDXIOUR" - validation magic

var userDataPool = sync.Pool{
	New: func() any {
		return &userData{
			notify: make(chan int32, 1),
		}
	},
}

func userDataPoolGet() *userData {
	u := userDataPool.Get().(*userData)
	u.Reset()
	return u
}

func userDataPoolPut(p *userData) {
	p.magic = 0 // mark as invaild
	userDataPool.Put(p)
}

// userData - tracks in-flight operation
type userData struct {
	magic  uint64
	notify chan int32
	sqe    IOUringSQE
	ivs    []Iovec // for readv / writev
	n      int32

	// block is the *ioblock.Block this operation was submitted for,
	// stored as unsafe.Pointer to avoid iouring importing ioblock's
	// exported API surface just for this one field's type. Set by
	// SetBlock before the operation is queued, read back by the
	// ring's completion dispatch to route the result.
	block unsafe.Pointer

	// msg backs the SQE's Addr field for the msghdr-based ops
	// (recvfrom/sendto) so the struct outlives the call that builds
	// it, exactly as ivs does for readv/writev.
	msg  Msghdr
	name sockaddrStorage
}

func (u *userData) Reset() {
	u.magic = UserDataMagic
	if len(u.notify) > 0 {
		<-u.notify
	}
	// userdata points to self
	u.sqe = IOUringSQE{UserData: uint64(uintptr(unsafe.Pointer(u)))}
	u.n = 0
	u.block = nil
}

// SetBlock records the *ioblock.Block this userData carries results
// for. b is an unsafe.Pointer to an *ioblock.Block (not the block
// package's type directly, to keep this file free of an ioblock
// import; see Block).
func (u *userData) SetBlock(b unsafe.Pointer) {
	u.block = b
}

// Block returns the *ioblock.Block last recorded via SetBlock, as an
// unsafe.Pointer for the caller to cast back.
func (u *userData) Block() unsafe.Pointer {
	return u.block
}

// SetWriteOp configures the SQE for a write operation
//
//go:norace
func (u *userData) SetWriteOp(fd int32, bufs ...[]byte) {
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_WRITEV
	sqe.Fd = fd
	sqe.Off = 0
	sqe.Len = 0
	u.ivs = u.ivs[:0]
	for _, buf := range bufs {
		if len(buf) > 0 {
			u.ivs = append(u.ivs, Iovec{
				Base: uintptr(unsafe.Pointer(&buf[0])),
				Len:  uint64(len(buf)),
			})
		}
	}
	if len(u.ivs) > 0 {
		sqe.Len = uint32(len(u.ivs))
		sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.ivs[0])))
	}
}

// sockaddrStorage is large enough to hold any socket address family
// this package submits (sockaddr_in, sockaddr_in6), mirroring the
// kernel's struct sockaddr_storage.
type sockaddrStorage [128]byte

// SetAcceptOp configures the SQE to accept a connection on fd. The
// peer address is written into the userData's own sockaddr buffer,
// readable via PeerAddr after completion.
//
//go:norace
func (u *userData) SetAcceptOp(fd int32) {
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_ACCEPT
	sqe.Fd = fd
	sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.name)))
	sqe.Len = uint32(len(u.name))
}

// SetConnectOp configures the SQE to connect fd to addr.
//
//go:norace
func (u *userData) SetConnectOp(fd int32, addr []byte) {
	copy(u.name[:], addr)
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_CONNECT
	sqe.Fd = fd
	sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.name)))
	sqe.Off = uint64(len(addr))
}

// PeerAddr returns the raw sockaddr bytes captured by an accept or
// receive-from operation.
func (u *userData) PeerAddr() []byte {
	return u.name[:]
}

// SetReceiveFromOp configures the SQE for a datagram receive that also
// captures the sender's address.
//
//go:norace
func (u *userData) SetReceiveFromOp(fd int32, buf []byte) {
	if len(buf) > 0 {
		u.ivs = u.ivs[:0]
		u.ivs = append(u.ivs, Iovec{Base: uintptr(unsafe.Pointer(&buf[0])), Len: uint64(len(buf))})
	} else {
		u.ivs = u.ivs[:0]
	}
	u.msg = Msghdr{
		Name:    (*byte)(unsafe.Pointer(&u.name)),
		Namelen: uint32(len(u.name)),
	}
	if len(u.ivs) > 0 {
		u.msg.Iov = &u.ivs[0]
		u.msg.Iovlen = uint64(len(u.ivs))
	}
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_RECVMSG
	sqe.Fd = fd
	sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.msg)))
	sqe.Len = 1
}

// SetSendToOp configures the SQE for a datagram send to addr.
//
//go:norace
func (u *userData) SetSendToOp(fd int32, addr []byte, buf []byte) {
	copy(u.name[:], addr)
	u.ivs = u.ivs[:0]
	if len(buf) > 0 {
		u.ivs = append(u.ivs, Iovec{Base: uintptr(unsafe.Pointer(&buf[0])), Len: uint64(len(buf))})
	}
	u.msg = Msghdr{
		Name:    (*byte)(unsafe.Pointer(&u.name)),
		Namelen: uint32(len(addr)),
	}
	if len(u.ivs) > 0 {
		u.msg.Iov = &u.ivs[0]
		u.msg.Iovlen = uint64(len(u.ivs))
	}
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_SENDMSG
	sqe.Fd = fd
	sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.msg)))
	sqe.Len = 1
}

// SetReadOp configures the SQE for a read operation
//
//go:norace
func (u *userData) SetReadOp(fd int32, bufs ...[]byte) {
	sqe := &u.sqe
	sqe.Opcode = IORING_OP_READV
	sqe.Fd = fd
	sqe.Off = 0
	sqe.Len = 0
	u.ivs = u.ivs[:0]
	for _, buf := range bufs {
		if len(buf) > 0 {
			u.ivs = append(u.ivs, Iovec{
				Base: uintptr(unsafe.Pointer(&buf[0])),
				Len:  uint64(len(buf)),
			})
		}
	}
	if len(u.ivs) > 0 {
		sqe.Len = uint32(len(u.ivs))
		sqe.Addr = uint64(uintptr(unsafe.Pointer(&u.ivs[0])))
	}
}

//go:nocheckptr
func getUserData(p uint64) *userData {
	return (*userData)(unsafe.Pointer(uintptr(p)))
}

//go:norace
func (u *userData) Copy2SQE(p *IOUringSQE) {
	*p = u.sqe
}

//go:norace
func (u *userData) IsValid() bool {
	return u.magic == UserDataMagic
}

//go:norace
func (u *userData) IsWriteOp() bool {
	return u.sqe.Opcode == IORING_OP_WRITE || u.sqe.Opcode == IORING_OP_WRITEV
}

//go:norace
func (u *userData) AdvanceWrite(n int32) (int32, bool) {
	done := false
	u.n += n // BUG: max 2GB per op

	switch u.sqe.Opcode {
	case IORING_OP_WRITE:
		u.sqe.Addr += uint64(n)
		u.sqe.Len -= uint32(n)
		done = u.sqe.Len == 0

	case IORING_OP_WRITEV:
		wn := uint64(n)
		ivs := u.ivs[:0]
		for i, iv := range u.ivs {
			if iv.Len <= wn {
				wn -= iv.Len
			} else {
				u.ivs[i].Base += uintptr(wn)
				u.ivs[i].Len -= wn
				ivs = append(ivs, u.ivs[i:]...)
				break
			}
		}
		u.ivs = ivs
		done = len(ivs) == 0

	default:
		panic("unexpected type")
	}
	return u.n, done
}

//go:norace
func (u *userData) SendRes(res int32) {
	if u.notify != nil {
		select {
		case u.notify <- res:
		default:
		}
	}
}

func (u *userData) Wait() int32 {
	return <-u.notify
}
