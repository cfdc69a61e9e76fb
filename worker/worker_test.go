package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudweave/corenet/service"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.New(service.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestWorkerTryGetEmpty(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 4)
	require.Nil(t, w.TryGet())
}

func TestWorkerTryGetDrainsErrorQueue(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 4)

	b := svc.MakeIO(nil, 0)
	svc.EnqueueError(b)

	got := w.TryGet()
	require.NotNil(t, got)
	require.Same(t, b, got)
	require.Nil(t, w.TryGet())
}

func TestWorkerTryGetOrdersMultipleErrors(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 4)

	b1 := svc.MakeIO(nil, 1)
	b2 := svc.MakeIO(nil, 2)
	svc.EnqueueError(b1)
	svc.EnqueueError(b2)

	require.Same(t, b1, w.TryGet())
	require.Same(t, b2, w.TryGet())
	require.Nil(t, w.TryGet())
}

func TestWorkerWaitForTimesOutWhenIdle(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 4)

	more, err := w.WaitFor(10 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, more)
}

func TestWorkerPollReturnsBufferedCompletionWithoutWaiting(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 4)

	b := svc.MakeIO(nil, 0)
	svc.EnqueueError(b)

	got := w.Poll(time.Second)
	require.Same(t, b, got)
}

func TestWorkerMaxResultsPerPollClamped(t *testing.T) {
	svc := newTestService(t)
	w := New(svc, 0)
	require.Equal(t, 1, w.cap)

	w2 := New(svc, maxNativeCompletions+500)
	require.Equal(t, maxNativeCompletions, w2.cap)
}
