// Package netio provides the transport layer underneath the packet codec: a
// Stream abstraction over TCP/Unix sockets, a Framed reader/writer that pairs
// a Stream with packet.Codec, and the in-band TLS upgrade that swaps a
// plaintext Stream for a tls.Conn mid-connection.
package netio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/mevdschee/tqsql/packet"
)

// Stream is the plain or TLS-wrapped socket a Framed reads and writes
// through. It is always a net.Conn; the type exists so Upgrade can replace
// the underlying connection without callers needing to know whether TLS is
// active.
type Stream struct {
	net.Conn
}

// Dial opens network/address (e.g. "tcp", "host:3306" or "unix",
// "/var/run/mysqld/mysqld.sock"), honoring ctx's deadline and cancellation
// the way net.Dialer.DialContext does for any other blocking call in an
// otherwise synchronous client.
func Dial(ctx context.Context, network, address string) (*Stream, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("netio: dial %s %s: %w", network, address, err)
	}
	return &Stream{Conn: conn}, nil
}

// withContext applies ctx's deadline (if any) to conn for the duration of fn,
// and races fn against ctx's cancellation so a blocking Read/Write unblocks
// as soon as the caller's context is done.
func withContext(ctx context.Context, conn net.Conn, fn func() error) error {
	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return err
		}
		defer conn.SetDeadline(time.Time{})
	}

	if ctx.Done() == nil {
		return fn()
	}

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		conn.SetDeadline(time.Now())
		<-done
		return ctx.Err()
	}
}

// ErrPendingData is returned by Upgrade when the Framed's read buffer still
// holds bytes from before the upgrade was requested. Any such bytes would
// have been read in plaintext, so upgrading on top of them would silently
// mix plaintext and TLS-protected data; the caller must drain the buffer
// (or, in practice, never read ahead of the handshake) before upgrading.
var ErrPendingData = errors.New("netio: cannot upgrade a stream with buffered plaintext data")

// Framed couples a Stream with packet.Codec and the read-side accumulation
// buffer the codec needs, turning the raw byte stream into a sequence of
// packet.Frame values.
type Framed struct {
	stream *Stream
	codec  packet.Codec
	buf    packet.Buffer
}

// NewFramed wraps stream for frame-oriented I/O.
func NewFramed(stream *Stream) *Framed {
	return &Framed{stream: stream}
}

// Recv reads and returns the next complete frame, blocking on the
// underlying socket (subject to ctx) until one is available.
func (f *Framed) Recv(ctx context.Context) (packet.Frame, error) {
	for {
		frame, ok, err := f.codec.Decode(&f.buf)
		if err != nil {
			return packet.Frame{}, err
		}
		if ok {
			return frame, nil
		}

		chunk := make([]byte, 4096)
		var n int
		err = withContext(ctx, f.stream.Conn, func() error {
			var readErr error
			n, readErr = f.stream.Conn.Read(chunk)
			return readErr
		})
		if n > 0 {
			f.buf.Write(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return packet.Frame{}, fmt.Errorf("netio: connection closed: %w", io.ErrUnexpectedEOF)
			}
			return packet.Frame{}, fmt.Errorf("netio: reading frame: %w", err)
		}
	}
}

// Send encodes and writes frame, blocking (subject to ctx) until the whole
// frame has been written.
func (f *Framed) Send(ctx context.Context, frame packet.Frame) error {
	var out bufferWriter
	if err := f.codec.Encode(&out, frame); err != nil {
		return err
	}
	return withContext(ctx, f.stream.Conn, func() error {
		_, err := f.stream.Conn.Write(out.data)
		return err
	})
}

// bufferWriter is the minimal io.Writer packet.Codec.Encode needs to
// accumulate a frame's wire bytes before a single Conn.Write call.
type bufferWriter struct {
	data []byte
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

// Upgrade replaces the Framed's underlying plaintext Stream with a TLS
// connection negotiated using cfg, and returns the negotiated tls.Conn so
// callers can inspect the handshake state if needed. It requires the read
// buffer to be empty; see ErrPendingData.
func (f *Framed) Upgrade(ctx context.Context, cfg *tls.Config) (*tls.Conn, error) {
	if f.buf.Len() != 0 {
		return nil, ErrPendingData
	}

	tlsConn := tls.Client(f.stream.Conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("netio: tls handshake: %w", err)
	}

	f.stream = &Stream{Conn: tlsConn}
	return tlsConn, nil
}

// Close closes the underlying stream.
func (f *Framed) Close() error {
	return f.stream.Conn.Close()
}

// RemoteAddr reports the address of the peer on the other end of the
// stream, plaintext or TLS.
func (f *Framed) RemoteAddr() net.Addr {
	return f.stream.Conn.RemoteAddr()
}
