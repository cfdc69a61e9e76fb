package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointParseAndString(t *testing.T) {
	e, err := ParseEndpoint("127.0.0.1:8195")
	require.NoError(t, err)
	assert.Equal(t, uint16(8195), e.Port)
	assert.Equal(t, "127.0.0.1:8195", e.String())

	e6, err := ParseEndpoint("[::1]:9000")
	require.NoError(t, err)
	assert.Equal(t, uint16(9000), e6.Port)
	assert.Equal(t, "[::1]:9000", e6.String())
}

func TestEndpointParseInvalid(t *testing.T) {
	_, err := ParseEndpoint("not-an-endpoint")
	assert.Error(t, err)
}

func TestEndpointCompareOrdersByAddressThenPort(t *testing.T) {
	a, _ := ParseEndpoint("10.0.0.1:100")
	b, _ := ParseEndpoint("10.0.0.1:200")
	c, _ := ParseEndpoint("10.0.0.2:1")

	assert.Negative(t, a.Compare(b))
	assert.Negative(t, a.Compare(c))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}
