package service

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	corenet "github.com/cloudweave/corenet"
)

func TestServiceErrorQueueRoundTrip(t *testing.T) {
	svc, err := New(DefaultOptions())
	require.NoError(t, err)
	defer svc.Close()

	require.Nil(t, svc.DequeueError())

	b := svc.MakeIO(nil, 0)
	b.Status = corenet.CodeWouldBlock
	svc.EnqueueError(b)

	got := svc.DequeueError()
	require.NotNil(t, got)
	require.Equal(t, corenet.CodeWouldBlock, got.Status)
	require.Nil(t, svc.DequeueError())

	svc.ReleaseIO(got)
}

func TestServiceMakeIOThenReleaseIdentity(t *testing.T) {
	svc, err := New(DefaultOptions())
	require.NoError(t, err)
	defer svc.Close()

	b := svc.MakeIO(unsafe.Pointer(svc), 7)
	require.Equal(t, unsafe.Pointer(svc), b.Ctx)
	require.Equal(t, uint64(7), b.CtxType)
	svc.ReleaseIO(b)
}

func TestServiceCompletionFillsReadyQueue(t *testing.T) {
	svc, err := New(DefaultOptions())
	require.NoError(t, err)
	defer svc.Close()

	b := svc.MakeIO(nil, 0)
	svc.onCompletion(rawCompletion{block: b, kind: opRead, n: 5, status: corenet.CodeOK})

	got := svc.TryGetCompletion()
	require.Same(t, b, got)
	svc.ReleaseIO(got)
}
