// Package transport establishes the single bidirectional byte stream an xfer
// session runs over.
//
// Two implementations exist: plain TCP (the default) and QUIC, where the
// session uses one stream of one connection. Both are selected by name with
// New.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/TheusHen/xfer/xfer/transport/quic"
	"github.com/TheusHen/xfer/xfer/transport/tcp"
)

const (
	NameTCP  = "tcp"
	NameQUIC = "quic"
)

var (
	ErrInvalidPort      = errors.New("transport: invalid port")
	ErrUnknownTransport = errors.New("transport: unknown transport")
)

// Conn is a connected byte stream owned by one session.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Listener accepts the peer of a responder.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() net.Addr
	Close() error
}

// Transport creates connections of one kind.
type Transport interface {
	Name() string
	Dial(ctx context.Context, addr string) (Conn, error)
	Listen(ctx context.Context, addr string) (Listener, error)
}

// New returns the transport registered under name.
func New(name string) (Transport, error) {
	switch name {
	case NameTCP, "":
		return tcpTransport{}, nil
	case NameQUIC:
		return quicTransport{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, name)
	}
}

// Addr joins host and port. Port 0 is rejected rather than letting the
// operating system pick one, so an unparsable port on the command line
// fails loudly.
func Addr(host string, port uint16) (string, error) {
	if port == 0 {
		return "", fmt.Errorf("%w: 0", ErrInvalidPort)
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port))), nil
}

// ParsePort parses a decimal port. Anything that is not a number in
// [0, 65535] parses to 0, which Addr then rejects.
func ParsePort(s string) uint16 {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(p)
}

type tcpTransport struct{}

func (tcpTransport) Name() string { return NameTCP }

func (tcpTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	return tcp.Dial(ctx, addr)
}

func (tcpTransport) Listen(ctx context.Context, addr string) (Listener, error) {
	ln, err := tcp.Listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	return tcpListener{ln}, nil
}

type tcpListener struct{ *tcp.Listener }

func (l tcpListener) Accept(ctx context.Context) (Conn, error) {
	return l.Listener.Accept(ctx)
}

type quicTransport struct{}

func (quicTransport) Name() string { return NameQUIC }

func (quicTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	c, err := quic.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (quicTransport) Listen(_ context.Context, addr string) (Listener, error) {
	ln, err := quic.Listen(addr)
	if err != nil {
		return nil, err
	}
	return quicListener{ln}, nil
}

type quicListener struct{ *quic.Listener }

func (l quicListener) Accept(ctx context.Context) (Conn, error) {
	c, err := l.Listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}
