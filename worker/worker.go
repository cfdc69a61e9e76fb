package worker

import (
	"time"

	"github.com/cloudweave/corenet/container/ring"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/service"
)

// maxNativeCompletions bounds how large a Worker's local batch buffer
// may grow; it stands in for the native completion-record array a real
// completion port (IOCP's array, an io_uring CQE ring) would hand back
// from a single wait call.
const maxNativeCompletions = 1024

type nativeCompletion struct {
	block *ioblock.Block
}

// Worker pulls one or more completions from a service.Service per
// call. try_get/wait_for/poll mirror spec.md §4.4 exactly; Go names
// them TryGet/WaitFor/Poll.
type Worker struct {
	svc *service.Service

	// buf is the fixed-capacity backing store for the local batch a
	// refill pulls from the service in one pass: container/ring.Ring
	// supplies GC-friendly fixed storage and Next's wraparound
	// arithmetic, and head/count turn that into a plain ring buffer.
	buf   *ring.Ring[nativeCompletion]
	cap   int
	head  int
	count int

	owner goroutineStamp
}

// New builds a Worker draining svc. maxResultsPerPoll is clamped to
// [1, maxNativeCompletions].
func New(svc *service.Service, maxResultsPerPoll int) *Worker {
	if maxResultsPerPoll < 1 {
		maxResultsPerPoll = 1
	}
	if maxResultsPerPoll > maxNativeCompletions {
		maxResultsPerPoll = maxNativeCompletions
	}
	items := make([]nativeCompletion, maxResultsPerPoll)
	w := &Worker{svc: svc, buf: ring.NewFromSlice(items), cap: maxResultsPerPoll}
	w.owner.stamp()
	return w
}

// TryGet returns any already-buffered completion, a fresh completion
// from the service's ready queue, or a service error-queue entry — in
// that priority order — or nil if none are available right now.
func (w *Worker) TryGet() *ioblock.Block {
	w.owner.check()
	if w.count == 0 {
		w.refill()
	}
	if w.count == 0 {
		return nil
	}
	item, _ := w.buf.Get(w.head)
	b := item.Pointer().block
	item.Pointer().block = nil
	w.head++
	if w.head == w.cap {
		w.head = 0
	}
	w.count--
	return b
}

func (w *Worker) refill() {
	for w.count < w.cap {
		b := w.svc.TryGetCompletion()
		if b == nil {
			b = w.svc.DequeueError()
		}
		if b == nil {
			break
		}
		idx := w.head + w.count
		if idx >= w.cap {
			idx -= w.cap
		}
		item, _ := w.buf.Get(idx)
		item.Pointer().block = b
		w.count++
	}
}

// WaitFor blocks up to timeout for more completions to arrive. It
// returns true if a completion is likely available (callers must
// still call TryGet — another worker may win the race) or false on
// timeout. A timeout of zero polls once without blocking.
func (w *Worker) WaitFor(timeout time.Duration) (more bool, err error) {
	w.owner.check()
	if timeout <= 0 {
		select {
		case <-w.svc.Notify():
			return true, nil
		default:
			return false, nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.svc.Notify():
		return true, nil
	case <-timer.C:
		return false, nil
	}
}

// Poll is the convenience loop spec.md §4.4 describes: TryGet, else
// WaitFor, then TryGet again. It returns nil on timeout.
func (w *Worker) Poll(timeout time.Duration) *ioblock.Block {
	if b := w.TryGet(); b != nil {
		return b
	}
	if more, _ := w.WaitFor(timeout); !more {
		return nil
	}
	return w.TryGet()
}
