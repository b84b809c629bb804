package xfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheusHen/xfer/xfer/transfer"
	"github.com/TheusHen/xfer/xfer/transport"
	"github.com/TheusHen/xfer/xfer/workspace"
)

var (
	ErrNotListening = errors.New("xfer: peer is not listening")

	// ErrAuthenticationFailed is returned by Receive when the tag does not
	// verify. No output file is created in that case.
	ErrAuthenticationFailed = transfer.ErrAuthenticationFailed
)

// Peer is one side of a transfer. It owns at most one listener and runs
// exactly one session per Send or Receive call.
type Peer struct {
	cfg      Config
	dir      *workspace.Dir
	tr       transport.Transport
	listener transport.Listener
}

func NewPeer(cfg Config) (*Peer, error) {
	cfg = cfg.withDefaults()
	dir, err := workspace.Open(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	tr, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Printf("workspace %s", dir.Root())
	return &Peer{cfg: cfg, dir: dir, tr: tr}, nil
}

// Listen listens on the configured host and port. Port 0 is an error.
func (p *Peer) Listen(ctx context.Context, port uint16) error {
	addr, err := transport.Addr(p.cfg.Host, port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return p.ListenOn(ctx, addr)
}

// ListenOn listens on an explicit address.
func (p *Peer) ListenOn(ctx context.Context, addr string) error {
	ln, err := p.tr.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	p.listener = ln
	p.cfg.Logger.Printf("listening on %s (%s)", ln.Addr(), p.tr.Name())
	return nil
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

func (p *Peer) Close() error {
	if p.listener == nil {
		return nil
	}
	err := p.listener.Close()
	p.listener = nil
	return err
}

// Send connects to port on the configured host and sends input.
func (p *Peer) Send(ctx context.Context, port uint16, input string) (Report, error) {
	addr, err := transport.Addr(p.cfg.Host, port)
	if err != nil {
		return Report{}, fmt.Errorf("connect: %w", err)
	}
	return p.SendTo(ctx, addr, input)
}

// SendTo connects to addr and sends input.
func (p *Peer) SendTo(ctx context.Context, addr, input string) (Report, error) {
	if _, err := p.dir.Resolve(input); err != nil {
		return Report{}, err
	}
	conn, err := p.tr.Dial(ctx, addr)
	if err != nil {
		return Report{}, fmt.Errorf("connect %s: %w", addr, err)
	}
	p.cfg.Logger.Printf("connected to %s", conn.RemoteAddr())
	return p.SendConn(conn, input)
}

// Receive accepts one peer on the listener and writes the verified file to
// output. The listener is closed when Receive returns.
func (p *Peer) Receive(ctx context.Context, output string) (Report, error) {
	if p.listener == nil {
		return Report{}, ErrNotListening
	}
	defer p.Close()

	if _, err := p.dir.Resolve(output); err != nil {
		return Report{}, err
	}
	conn, err := p.listener.Accept(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("accept: %w", err)
	}
	p.cfg.Logger.Printf("accepted %s", conn.RemoteAddr())
	return p.ReceiveConn(conn, output)
}
