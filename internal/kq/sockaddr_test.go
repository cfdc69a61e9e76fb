//go:build darwin || netbsd || freebsd || openbsd || dragonfly

package kq

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSockaddrRoundTripV4(t *testing.T) {
	want := &syscall.SockaddrInet4{Port: 8195, Addr: [4]byte{127, 0, 0, 1}}
	raw := sockaddrToRaw(want)
	got, err := rawToSockaddr(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSockaddrRoundTripV6(t *testing.T) {
	want := &syscall.SockaddrInet6{Port: 9000, ZoneId: 2}
	want.Addr[15] = 1
	raw := sockaddrToRaw(want)
	got, err := rawToSockaddr(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRawToSockaddrRejectsShortBuffer(t *testing.T) {
	_, err := rawToSockaddr([]byte{4, 0, 0})
	assert.Error(t, err)
}
