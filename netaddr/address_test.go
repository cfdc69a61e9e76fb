package netaddr

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"127.0.0.1", "127.0.0.1"},
		{"::1", "::1"},
		{"fe80::1%5", "fe80::1%5"},
	}
	for _, c := range cases {
		a, err := ParseAddress(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, a.String(), c.in)
	}
}

func TestAddressFamily(t *testing.T) {
	v4, _ := ParseAddress("10.0.0.1")
	v6, _ := ParseAddress("::1")
	assert.Equal(t, IPv4, v4.Family())
	assert.Equal(t, IPv6, v6.Family())
}

func TestAddressCompareOrdersByFamilyThenBytes(t *testing.T) {
	v4a, _ := ParseAddress("10.0.0.1")
	v4b, _ := ParseAddress("10.0.0.2")
	v6, _ := ParseAddress("::1")

	assert.Negative(t, v4a.Compare(v4b))
	assert.Positive(t, v4b.Compare(v4a))
	assert.Zero(t, v4a.Compare(v4a))
	assert.Negative(t, v4a.Compare(v6)) // IPv4 < IPv6
}

func TestAddressFromIP(t *testing.T) {
	a, ok := AddressFromIP(net.ParseIP("192.168.0.1"))
	require.True(t, ok)
	assert.Equal(t, IPv4, a.Family())
	assert.Equal(t, "192.168.0.1", a.IP().String())
}

func TestAddressEqual(t *testing.T) {
	a, _ := ParseAddress("127.0.0.1")
	b, _ := ParseAddress("127.0.0.1")
	c, _ := ParseAddress("127.0.0.2")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
