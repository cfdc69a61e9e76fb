package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketBindListenTCP(t *testing.T) {
	s, err := NewSocket(TCP, IPv4)
	require.NoError(t, err)
	defer s.Close()

	loopback, _ := ParseAddress("127.0.0.1")
	require.NoError(t, s.Bind(Endpoint{Addr: loopback, Port: 0, Protocol: TCP}))
	require.NoError(t, s.Listen(16))

	local, err := s.LocalEndpoint()
	require.NoError(t, err)
	assert.NotZero(t, local.Port)
	assert.True(t, local.Addr.Equal(loopback))
}

func TestSocketBindUDP(t *testing.T) {
	s, err := NewSocket(UDP, IPv4)
	require.NoError(t, err)
	defer s.Close()

	loopback, _ := ParseAddress("127.0.0.1")
	require.NoError(t, s.Bind(Endpoint{Addr: loopback, Port: 0, Protocol: UDP}))

	local, err := s.LocalEndpoint()
	require.NoError(t, err)
	assert.NotZero(t, local.Port)
}
