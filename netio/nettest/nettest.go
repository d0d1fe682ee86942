// Package nettest provides an in-memory Stream pair for driving connection
// and handshake tests without opening real sockets, the same net.Pipe-based
// fixture the proxy's own packet tests use.
package nettest

import (
	"context"
	"net"

	"github.com/mevdschee/tqsql/netio"
	"github.com/mevdschee/tqsql/packet"
)

// Pipe returns two connected in-memory streams: client is what the code
// under test dials against, server is driven by the test to script the
// peer's side of the conversation.
func Pipe() (client, server *netio.Stream) {
	c, s := net.Pipe()
	return &netio.Stream{Conn: c}, &netio.Stream{Conn: s}
}

// FakeServer wraps the server side of a Pipe with frame-level helpers so a
// test can script a handshake without hand-rolling header bytes.
type FakeServer struct {
	Framed *netio.Framed
}

// NewFakeServer wraps the server-side stream returned by Pipe.
func NewFakeServer(server *netio.Stream) *FakeServer {
	return &FakeServer{Framed: netio.NewFramed(server)}
}

// SendFrame writes a single frame to the client under test.
func (s *FakeServer) SendFrame(ctx context.Context, seq uint8, payload []byte) error {
	return s.Framed.Send(ctx, packet.NewFrame(seq, payload))
}

// RecvFrame reads the next frame the client under test sent.
func (s *FakeServer) RecvFrame(ctx context.Context) (packet.Frame, error) {
	return s.Framed.Recv(ctx)
}

// Close closes the server-side stream.
func (s *FakeServer) Close() error {
	return s.Framed.Close()
}
