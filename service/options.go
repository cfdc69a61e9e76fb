package service

import "time"

// Options configures the platform port underneath a Service. Zero
// value is not ready to use; start from DefaultOptions.
type Options struct {
	// QueueDepth bounds the number of in-flight submissions the
	// platform port will buffer (Linux: the io_uring's SQE/CQE ring
	// size; BSD: advisory only, kq has no fixed ring to size).
	QueueDepth uint32
	// SubmitBatchSize is how many submissions the Linux port batches
	// before flushing them to the kernel (ignored on BSD, where every
	// submission registers its kevent immediately).
	SubmitBatchSize int
	// SubmitInterval forces a flush at least this often even under
	// SubmitBatchSize; zero disables the timer (ignored on BSD).
	SubmitInterval time.Duration
}

// DefaultOptions returns the option set new Services should start
// from, matching internal/iouring.DefaultConfig's values.
func DefaultOptions() Options {
	return Options{
		QueueDepth:      10000,
		SubmitBatchSize: 256,
		SubmitInterval:  0,
	}
}
