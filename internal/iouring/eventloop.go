package iouring

import (
	"sync"
	"time"
	"unsafe"
)

// Completion describes one finished operation, handed to the
// IOUringEventLoop's onDone callback. Peer is only populated for
// accept/recvmsg ops (see userData.SetAcceptOp/SetReceiveFromOp).
type Completion struct {
	Block  unsafe.Pointer
	Res    int32
	Opcode uint8
	Peer   []byte
}

// ring represents a single io_uring instance with its submission channel
type ring struct {
	r       *IOUring
	sqeChan chan *userData
	mu      sync.Mutex
	onDone  func(Completion)
}

// IOUringEventLoop manages a single io_uring instance for all connections
type IOUringEventLoop struct {
	ring *ring
}

// NewIOUringEventLoop starts a ring backed by two goroutines: one
// batching SQE submissions off cfg, one draining CQEs. onDone is
// invoked from the CQE-draining goroutine for every completed
// operation that carries a Block (see userData.SetBlock); it is the
// hook package service uses to translate a raw io_uring result into a
// Block's Status/result and hand it to a worker.
func NewIOUringEventLoop(cfg *Config, onDone func(Completion)) (*IOUringEventLoop, error) {
	r, err := NewIOUring(2 * cfg.IOUringQueueSize)
	if err != nil {
		return nil, err
	}

	evl := &IOUringEventLoop{
		ring: &ring{
			r:       r,
			sqeChan: make(chan *userData, cfg.IOUringQueueSize),
			onDone:  onDone,
		},
	}

	go evl.ring.sqeEventLoop(cfg.SQEBatchSize, cfg.SQESubmitInterval)
	go evl.ring.eventLoop()

	return evl, nil
}

// Submit enqueues x for the next submission batch.
func (evl *IOUringEventLoop) Submit(x *userData) {
	evl.ring.sqeChan <- x
}

// Close tears down the underlying ring. In-flight operations are not
// drained; callers are expected to have canceled their sockets first.
func (evl *IOUringEventLoop) Close() error {
	return evl.ring.r.Close()
}

func (r *ring) prepareSQE(x *userData) {
	sqe := r.r.PeekSQE(false)
	x.Copy2SQE(sqe)
	r.r.AdvanceSQ()
}

func (r *ring) Submit() {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, errno := r.r.Submit()
	if errno != 0 {
		panic(errno.Error())
	}
}

func (r *ring) SubmitBatch(xx []*userData) {
	for _, x := range xx {
		r.prepareSQE(x)
	}
	r.Submit()
}

// sqeEventLoop - serialize SQE submissions and batch for efficiency
func (r *ring) sqeEventLoop(batchSize int, submitInterval time.Duration) {
	var submitc <-chan time.Time
	if submitInterval > 0 {
		ticker := time.NewTicker(submitInterval)
		defer ticker.Stop()
		submitc = ticker.C
	}
	n := 0
	for {
		select {
		case x, ok := <-r.sqeChan:
			if !ok {
				return
			}
			r.prepareSQE(x)
			n++
		case <-submitc:
			r.Submit()
			n = 0
		}
		if n >= batchSize || (submitc == nil && n > 0 && len(r.sqeChan) == 0) {
			r.Submit()
			n = 0
		}
	}
}

// eventLoop - wait for completions and dispatch results
func (r *ring) eventLoop() {
	for {
		cqe, err := r.r.WaitCQE()
		if err != nil {
			panic(err)
		}
		// UserData can be 0 for timeout operations
		if cqe.UserData != 0 {
			r.handleUserData(getUserData(cqe.UserData), cqe.Res)
		}
		r.r.AdvanceCQ()
	}
}

func (r *ring) handleUserData(ud *userData, res int32) {
	if !ud.IsValid() {
		return
	}
	if res > 0 && ud.IsWriteOp() {
		n, done := ud.AdvanceWrite(res)
		if !done {
			r.sqeChan <- ud // continue write until its done
			return
		}
		res = n
	}
	block := ud.Block()
	ud.SendRes(res) // notify any legacy Wait() caller
	if block != nil && r.onDone != nil {
		c := Completion{Block: block, Res: res, Opcode: ud.sqe.Opcode}
		if ud.sqe.Opcode == IORING_OP_ACCEPT || ud.sqe.Opcode == IORING_OP_RECVMSG {
			peer := make([]byte, len(ud.PeerAddr()))
			copy(peer, ud.PeerAddr())
			c.Peer = peer
		}
		r.onDone(c)
	}
	userDataPoolPut(ud)
}
