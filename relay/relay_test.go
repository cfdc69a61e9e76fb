package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudweave/corenet/asocket"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/service"
	"github.com/cloudweave/corenet/worker"
)

func loopback(t *testing.T) netaddr.Endpoint {
	t.Helper()
	addr, err := netaddr.ParseAddress("127.0.0.1")
	require.NoError(t, err)
	return netaddr.Endpoint{Addr: addr, Port: 0, Protocol: netaddr.UDP}
}

// TestForwardsMatchingSession covers spec.md §4.7's forwarding
// algorithm end to end: a client registers a session on the
// allocation port, a peer sends data on the relayed port under that
// session id, and the payload must reach the client's endpoint.
func TestForwardsMatchingSession(t *testing.T) {
	svc, err := service.New(service.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	rel, err := New(svc, loopback(t), loopback(t), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { rel.Close() })
	rel.Start()

	allocAddr, err := rel.allocation.LocalEndpoint()
	require.NoError(t, err)
	relayedAddr, err := rel.relayed.LocalEndpoint()
	require.NoError(t, err)

	w := worker.New(svc, 8)
	drain := func(timeout time.Duration) {
		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			b := w.Poll(20 * time.Millisecond)
			if b == nil {
				continue
			}
			rel.HandleCompletion(b)
		}
	}

	client, err := asocket.Open(netaddr.UDP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Bind(loopback(t)))
	require.NoError(t, client.Associate(svc, 8, 8))

	const sessionID uint64 = 0x0102030405060708
	idBuf := make([]byte, sessionIDSize)
	for i := range idBuf {
		idBuf[len(idBuf)-1-i] = byte(sessionID >> (8 * i))
	}

	regBlock := svc.MakeIO(nil, 0)
	client.StartSendTo(regBlock, allocAddr, idBuf)
	drain(time.Second)

	peer, err := asocket.Open(netaddr.UDP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })
	require.NoError(t, peer.Bind(loopback(t)))
	require.NoError(t, peer.Associate(svc, 8, 8))

	payload := append(append([]byte{}, idBuf...), []byte("hello")...)
	sendBlock := svc.MakeIO(nil, 0)
	peer.StartSendTo(sendBlock, relayedAddr, payload)
	drain(time.Second)

	recvBlock := svc.MakeIO(nil, 0)
	recvBuf := make([]byte, 64)
	client.StartReceiveFrom(recvBlock, recvBuf)

	deadline := time.Now().Add(2 * time.Second)
	var gotRecv *ioblock.Block
	for time.Now().Before(deadline) && gotRecv == nil {
		b := w.Poll(20 * time.Millisecond)
		if b == nil {
			continue
		}
		if b == recvBlock {
			gotRecv = b
			break
		}
		rel.HandleCompletion(b)
	}
	require.NotNil(t, gotRecv)

	rr, err := ioblock.Result[ioblock.ReceiveFromResult](gotRecv)
	require.NoError(t, err)
	require.Equal(t, len(payload), rr.Transferred)
	require.Equal(t, payload, recvBuf[:rr.Transferred])
}
