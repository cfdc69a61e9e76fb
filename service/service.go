package service

import (
	"unsafe"

	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/queue"
)

// Service binds an ioblock.Pool to a platform completion port. New
// constructs one per caller; it is never a process-wide singleton, so
// tests can run several in isolation.
type Service struct {
	pool *ioblock.Pool
	port platformPort

	// ready carries every completion (success or failure) the port
	// reports. error carries submission-time failures an asocket
	// pushed before the platform ever saw the request. Both are MPMC:
	// exactly spec.md §5's "error queue uses a spin-lock around an
	// MPSC queue", generalized to also let a worker's ready queue
	// serve multiple concurrent workers.
	ready *queue.MPMC
	errs  *queue.MPMC

	// notify wakes a worker blocked in WaitFor; it is signalled
	// (non-blocking, best-effort) every time ready or errs gains an
	// entry. A buffered channel of size 1 is enough: WaitFor only
	// needs to know "something may be available now", not how much.
	notify chan struct{}
}

// New constructs a Service bound to this process's platform port.
func New(opts Options) (*Service, error) {
	s := &Service{
		pool:   ioblock.NewPool(),
		ready:  queue.NewMPMC(ioblock.CompletionHookAccessor()),
		errs:   queue.NewMPMC(ioblock.CompletionHookAccessor()),
		notify: make(chan struct{}, 1),
	}
	port, err := newPlatformPort(opts, s.onCompletion)
	if err != nil {
		return nil, err
	}
	s.port = port
	return s, nil
}

// Notify returns the channel package worker selects on inside WaitFor.
// A receive does not guarantee a completion is still buffered (another
// worker may have drained it first); callers must still TryGet.
func (s *Service) Notify() <-chan struct{} {
	return s.notify
}

func (s *Service) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Close tears down the platform port. In-flight operations are not
// drained; callers are expected to have closed their sockets first.
func (s *Service) Close() error {
	return s.port.close()
}

// MakeIO allocates a Block from the pool, tagged with ctx/typeID and
// bound back to s so a completion can be routed or resubmitted.
func (s *Service) MakeIO(ctx unsafe.Pointer, typeID uint64) *ioblock.Block {
	b := s.pool.New(ctx, typeID)
	b.Service = unsafe.Pointer(s)
	return b
}

// ReleaseIO returns b to the pool. Callers must not touch b again.
func (s *Service) ReleaseIO(b *ioblock.Block) {
	s.pool.Release(b)
}

// EnqueueError pushes b onto the error queue. asocket calls this for
// submission-time failures the platform never saw (back-pressure,
// pool exhaustion) so a worker observes them the same way it observes
// a normal completion.
func (s *Service) EnqueueError(b *ioblock.Block) {
	s.errs.Push(unsafe.Pointer(b))
	s.wake()
}

// DequeueError pops the next error-queue entry, or nil.
func (s *Service) DequeueError() *ioblock.Block {
	return (*ioblock.Block)(s.errs.TryPop())
}

// TryGetCompletion pops the next ready-completion entry, or nil. This
// is package worker's primitive, not meant for asocket or application
// code — callers should go through worker.Worker instead.
func (s *Service) TryGetCompletion() *ioblock.Block {
	return (*ioblock.Block)(s.ready.TryPop())
}

// SubmitRead starts a connected-socket read.
func (s *Service) SubmitRead(fd int, buf []byte, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.ReceiveResult](b)
	s.port.submitRead(fd, buf, unsafe.Pointer(b))
}

// SubmitWrite starts a connected-socket write.
func (s *Service) SubmitWrite(fd int, buf []byte, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.SendResult](b)
	s.port.submitWrite(fd, buf, unsafe.Pointer(b))
}

// SubmitReceiveFrom starts a datagram receive that also captures the
// sender's endpoint.
func (s *Service) SubmitReceiveFrom(fd int, buf []byte, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.ReceiveFromResult](b)
	s.port.submitReceiveFrom(fd, buf, unsafe.Pointer(b))
}

// SubmitSendTo starts a datagram send to remote.
func (s *Service) SubmitSendTo(fd int, remote netaddr.Endpoint, buf []byte, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.SendToResult](b)
	s.port.submitSendTo(fd, remote, buf, unsafe.Pointer(b))
}

// SubmitConnect starts an outbound connect to remote.
func (s *Service) SubmitConnect(fd int, remote netaddr.Endpoint, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.ConnectResult](b)
	s.port.submitConnect(fd, remote, unsafe.Pointer(b))
}

// SubmitAccept starts an accept on the listening fd.
func (s *Service) SubmitAccept(fd int, b *ioblock.Block) {
	ioblock.StoreResult[ioblock.AcceptResult](b)
	s.port.submitAccept(fd, unsafe.Pointer(b))
}
