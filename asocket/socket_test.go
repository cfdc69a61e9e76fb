package asocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/internal/connstate"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/service"
	"github.com/cloudweave/corenet/worker"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.New(service.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func loopbackEndpoint(t *testing.T, proto netaddr.Protocol) netaddr.Endpoint {
	t.Helper()
	addr, err := netaddr.ParseAddress("127.0.0.1")
	require.NoError(t, err)
	return netaddr.Endpoint{Addr: addr, Port: 0, Protocol: proto}
}

// drainOne polls w until a completion arrives or the deadline passes,
// since a real loopback round trip crosses at least one OS scheduling
// boundary that a single Poll call is not guaranteed to catch.
func drainOne(w *worker.Worker, timeout time.Duration) *ioblock.Block {
	deadline := time.Now().Add(timeout)
	for {
		if b := w.Poll(50 * time.Millisecond); b != nil {
			return b
		}
		if time.Now().After(deadline) {
			return nil
		}
	}
}

// TestEchoRoundTrip covers spec.md §8 scenario 3 (accept) and the
// echo round-trip scenario together: listen, connect, accept, send,
// receive.
func TestEchoRoundTrip(t *testing.T) {
	svc := newTestService(t)
	w := worker.New(svc, 8)

	listener, err := Open(netaddr.TCP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	require.NoError(t, listener.Bind(loopbackEndpoint(t, netaddr.TCP)))
	require.NoError(t, listener.Listen(8))
	local, err := listener.LocalEndpoint()
	require.NoError(t, err)
	require.NoError(t, listener.Associate(svc, 4, 4))

	acceptBlock := svc.MakeIO(nil, 0)
	listener.StartAccept(acceptBlock)

	client, err := Open(netaddr.TCP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Associate(svc, 4, 4))

	connectBlock := svc.MakeIO(nil, 0)
	client.StartConnect(connectBlock, local)

	gotConnect := drainOne(w, 2*time.Second)
	require.NotNil(t, gotConnect)
	_, err = ioblock.Result[ioblock.ConnectResult](gotConnect)
	require.NoError(t, err)
	svc.ReleaseIO(gotConnect)

	gotAccept := drainOne(w, 2*time.Second)
	require.NotNil(t, gotAccept)

	server, err := AcceptedSocket(listener, gotAccept)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	// accept_t::accepted_socket is callable at most once.
	_, err = AcceptedSocket(listener, gotAccept)
	require.Error(t, err)
	require.ErrorIs(t, err, corenet.CodeBadFileDescriptor)

	svc.ReleaseIO(gotAccept)
	require.NoError(t, server.Associate(svc, 4, 4))

	sendBlock := svc.MakeIO(nil, 0)
	client.StartSend(sendBlock, []byte("ping"))
	gotSend := drainOne(w, 2*time.Second)
	require.NotNil(t, gotSend)
	sr, err := ioblock.Result[ioblock.SendResult](gotSend)
	require.NoError(t, err)
	require.Equal(t, 4, sr.Transferred)
	svc.ReleaseIO(gotSend)

	recvBuf := make([]byte, 16)
	recvBlock := svc.MakeIO(nil, 0)
	server.StartReceive(recvBlock, recvBuf)
	gotRecv := drainOne(w, 2*time.Second)
	require.NotNil(t, gotRecv)
	rr, err := ioblock.Result[ioblock.ReceiveResult](gotRecv)
	require.NoError(t, err)
	require.Equal(t, 4, rr.Transferred)
	require.Equal(t, "ping", string(recvBuf[:rr.Transferred]))

	Observe(gotRecv)
	require.Equal(t, connstate.StateOK, server.State())
	svc.ReleaseIO(gotRecv)
}

// TestAcceptThenPeerCloseObservesBrokenPipe covers spec.md §8 scenario
// 4: the accept succeeds, but the peer closes before any payload, so
// the first receive on the accepted socket completes with zero bytes
// and a broken-pipe status, which moves the socket to remote-closed.
func TestAcceptThenPeerCloseObservesBrokenPipe(t *testing.T) {
	svc := newTestService(t)
	w := worker.New(svc, 8)

	listener, err := Open(netaddr.TCP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	require.NoError(t, listener.Bind(loopbackEndpoint(t, netaddr.TCP)))
	require.NoError(t, listener.Listen(8))
	local, err := listener.LocalEndpoint()
	require.NoError(t, err)
	require.NoError(t, listener.Associate(svc, 4, 4))

	acceptBlock := svc.MakeIO(nil, 0)
	listener.StartAccept(acceptBlock)

	client, err := Open(netaddr.TCP, netaddr.IPv4)
	require.NoError(t, err)
	require.NoError(t, client.Associate(svc, 4, 4))

	connectBlock := svc.MakeIO(nil, 0)
	client.StartConnect(connectBlock, local)

	gotConnect := drainOne(w, 2*time.Second)
	require.NotNil(t, gotConnect)
	svc.ReleaseIO(gotConnect)
	require.NoError(t, client.Close())

	gotAccept := drainOne(w, 2*time.Second)
	require.NotNil(t, gotAccept)
	server, err := AcceptedSocket(listener, gotAccept)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	svc.ReleaseIO(gotAccept)
	require.NoError(t, server.Associate(svc, 4, 4))

	recvBuf := make([]byte, 16)
	recvBlock := svc.MakeIO(nil, 0)
	server.StartReceive(recvBlock, recvBuf)
	gotRecv := drainOne(w, 2*time.Second)
	require.NotNil(t, gotRecv)
	_, err = ioblock.Result[ioblock.ReceiveResult](gotRecv)
	require.ErrorIs(t, err, corenet.CodeBrokenPipe)

	Observe(gotRecv)
	require.Equal(t, connstate.StateRemoteClosed, server.State())
	svc.ReleaseIO(gotRecv)
}

// TestBackPressureCapRejectsSecondSubmit covers spec.md §8 scenario 5:
// a socket associated with max_outstanding_receives = 1 has its second
// back-to-back receive delivered via the error queue with a
// would_block status, not rejected synchronously.
func TestBackPressureCapRejectsSecondSubmit(t *testing.T) {
	svc := newTestService(t)

	sock, err := Open(netaddr.UDP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })
	require.NoError(t, sock.Bind(loopbackEndpoint(t, netaddr.UDP)))
	require.NoError(t, sock.Associate(svc, 1, 1))

	// b1 stays outstanding at the platform for the rest of this test; it
	// is deliberately never released since the completion port still
	// holds its address.
	b1 := svc.MakeIO(nil, 0)
	sock.StartReceiveFrom(b1, make([]byte, 16))

	b2 := svc.MakeIO(nil, 0)
	sock.StartReceiveFrom(b2, make([]byte, 16))
	require.Equal(t, corenet.CodeWouldBlock, b2.Status)

	got := svc.DequeueError()
	require.Same(t, b2, got)
	svc.ReleaseIO(b2)
}

// TestContextRoundTrip exercises the opaque per-socket context.
func TestContextRoundTrip(t *testing.T) {
	sock, err := Open(netaddr.UDP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })

	type sessionInfo struct{ name string }
	info := &sessionInfo{name: "peer-1"}
	SetContext(sock, info)

	got := GetContext[sessionInfo](sock)
	require.Same(t, info, got)

	type other struct{ n int }
	require.Nil(t, GetContext[other](sock))
}

// TestAssociateTwiceFails covers the already-associated error.
func TestAssociateTwiceFails(t *testing.T) {
	svc := newTestService(t)
	sock, err := Open(netaddr.UDP, netaddr.IPv4)
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })

	require.NoError(t, sock.Associate(svc, 4, 4))
	err = sock.Associate(svc, 4, 4)
	require.ErrorIs(t, err, corenet.CodeAlreadyAssociated)
}
