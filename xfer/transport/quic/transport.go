// Package quic runs an xfer session over a single bidirectional QUIC stream.
package quic

import (
	"context"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
)

// Linger bounds how long the dialing side waits, after closing its write
// half, for the peer to finish reading and close the connection.
var Linger = 5 * time.Second

const closeCodeDone q.ApplicationErrorCode = 0

type Listener struct {
	inner *q.Listener
}

func Listen(addr string) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

// Accept waits for a connection and for the stream the dialer opens on it.
// The stream only becomes visible once the dialer has written to it.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, err
	}
	st, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(closeCodeDone, "no stream")
		return nil, err
	}
	return &Conn{conn: conn, stream: st}, nil
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) Close() error { return l.inner.Close() }

func Dial(ctx context.Context, addr string) (*Conn, error) {
	conn, err := q.DialAddr(ctx, addr, NewClientTLSConfig(), &q.Config{})
	if err != nil {
		return nil, err
	}
	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(closeCodeDone, "no stream")
		return nil, err
	}
	return &Conn{conn: conn, stream: st, dialer: true}, nil
}

// Conn adapts one QUIC stream to an io.ReadWriteCloser.
type Conn struct {
	conn   q.Connection
	stream q.Stream
	dialer bool
}

func (c *Conn) Read(p []byte) (int, error) { return c.stream.Read(p) }

func (c *Conn) Write(p []byte) (int, error) { return c.stream.Write(p) }

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close finishes the stream and tears the connection down. The dialer sends
// last, so it waits up to Linger for the listener to close first; closing
// immediately could drop data still in flight.
func (c *Conn) Close() error {
	err := c.stream.Close()
	if c.dialer {
		t := time.NewTimer(Linger)
		select {
		case <-c.conn.Context().Done():
		case <-t.C:
		}
		t.Stop()
	}
	if cerr := c.conn.CloseWithError(closeCodeDone, "done"); err == nil {
		err = cerr
	}
	return err
}
