package transport

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	cases := map[string]uint16{
		"9000":   9000,
		"65535":  65535,
		"0":      0,
		"65536":  0,
		"-1":     0,
		"abc":    0,
		"":       0,
		"80x":    0,
		" 80":    0,
		"000443": 443,
	}
	for in, want := range cases {
		require.Equal(t, want, ParsePort(in), "ParsePort(%q)", in)
	}
}

func TestAddrRejectsPortZero(t *testing.T) {
	_, err := Addr("127.0.0.1", 0)
	require.ErrorIs(t, err, ErrInvalidPort)

	addr, err := Addr("127.0.0.1", 9000)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", addr)

	addr, err = Addr("::1", 9000)
	require.NoError(t, err)
	require.Equal(t, "[::1]:9000", addr)
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", NameTCP, NameQUIC} {
		tr, err := New(name)
		require.NoError(t, err)
		require.NotNil(t, tr)
	}
	_, err := New("carrier-pigeon")
	require.ErrorIs(t, err, ErrUnknownTransport)
}

func TestTCPDialAccept(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := New(NameTCP)
	require.NoError(t, err)

	ln, err := tr.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()
		_, err = conn.Write([]byte("hi"))
		errCh <- err
	}()

	conn, err := tr.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	require.Equal(t, "hi", string(got))
	require.NoError(t, <-errCh)
}

func TestTCPAcceptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr, _ := New(NameTCP)
	ln, err := tr.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err = ln.Accept(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestTCPDialRefused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, _ := New(NameTCP)
	ln, err := tr.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = tr.Dial(ctx, addr)
	require.Error(t, err)
}
