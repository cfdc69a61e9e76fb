package ioblock

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudweave/corenet"
)

func TestBlockSize(t *testing.T) {
	assert.Equal(t, TotalSize, int(unsafe.Sizeof(Block{})))
}

func TestBlockWindowDefaultsToFullPayload(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	assert.Len(t, b.Window(), b.Capacity())
}

func TestBlockSetWindowNarrows(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	b.SetWindow(10, 20)
	assert.Len(t, b.Window(), 10)

	assert.Panics(t, func() { b.SetWindow(-1, 5) })
	assert.Panics(t, func() { b.SetWindow(5, 3) })
	assert.Panics(t, func() { b.SetWindow(0, b.Capacity()+1) })
}

func TestBlockResetWindowRestoresFullPayload(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	b.SetWindow(0, 5)
	b.ResetWindow()
	assert.Len(t, b.Window(), b.Capacity())
}

type fakeReceiveFromResult struct {
	Bytes int
	From  uint64
}

type fakeSendToResult struct {
	Bytes int
}

func TestTypedResultRoundTrip(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	r := StoreResult[fakeReceiveFromResult](b)
	r.Bytes = 42
	r.From = 7

	got, err := Result[fakeReceiveFromResult](b)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 42, got.Bytes)
	assert.Equal(t, uint64(7), got.From)
}

func TestTypedResultMismatchReturnsNilButStillReportsStatus(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	StoreResult[fakeReceiveFromResult](b)
	b.Status = corenet.CodeBrokenPipe

	got, err := Result[fakeSendToResult](b)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, corenet.CodeBrokenPipe)
}

func TestResultOnFreshBlockReportsOK(t *testing.T) {
	p := NewPool()
	b := p.New(nil, 0)
	defer p.Release(b)

	got, err := Result[fakeSendToResult](b)
	assert.Nil(t, got)
	assert.NoError(t, err)
}

func TestReleaseClearsContext(t *testing.T) {
	p := NewPool()
	var ctxVal int
	b := p.New(unsafe.Pointer(&ctxVal), 99)
	assert.Equal(t, uint64(99), b.CtxType)

	p.Release(b)
	assert.Nil(t, b.Ctx)
	assert.Equal(t, uint64(0), b.CtxType)
	assert.Equal(t, corenet.CodeOK, b.Status)
}
