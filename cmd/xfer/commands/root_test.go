package commands

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TheusHen/xfer/xfer"
	"github.com/TheusHen/xfer/xfer/transport"
	"github.com/TheusHen/xfer/xfer/workspace"
)

func execute(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out, &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestUsageExitsZero(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"c"},
		{"s", "4000"},
		{"x", "4000", "file"},
	} {
		out, err := execute(context.Background(), args...)
		require.NoError(t, err, "args %q", args)
		require.Equal(t, ExitOK, ExitCode(err))
		require.Contains(t, out, "Required arguments", "args %q", args)
	}
}

func TestInvalidPortIsFatal(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"s", "0", "out"},
		{"s", "not-a-port", "out"},
		{"c", "70000", "in"},
	} {
		full := append([]string{"--quiet", "--dir", dir}, args...)
		_, err := execute(context.Background(), full...)
		require.ErrorIs(t, err, transport.ErrInvalidPort, "args %q", args)
		require.Equal(t, ExitFatal, ExitCode(err))
	}
}

func TestUnknownTransportIsFatal(t *testing.T) {
	_, err := execute(context.Background(), "--quiet", "--dir", t.TempDir(), "--transport", "udp", "s", "4000", "out")
	require.ErrorIs(t, err, transport.ErrUnknownTransport)
	require.Equal(t, ExitFatal, ExitCode(err))
}

func TestEscapingPathIsFatal(t *testing.T) {
	_, err := execute(context.Background(), "--quiet", "--dir", t.TempDir(), "c", "4000", "../secret")
	require.ErrorIs(t, err, workspace.ErrPathEscapes)
	require.Equal(t, ExitFatal, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, ExitOK, ExitCode(nil))
	require.Equal(t, ExitFatal, ExitCode(os.ErrNotExist))
	require.Equal(t, ExitRejected, ExitCode(xfer.ErrAuthenticationFailed))
	require.Equal(t, ExitRejected, ExitCode(fmt.Errorf("receive: %w", xfer.ErrAuthenticationFailed)))
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func TestSendReceive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	src, dst := t.TempDir(), t.TempDir()
	plain := []byte("0123456789")
	require.NoError(t, os.WriteFile(filepath.Join(src, "in.txt"), plain, 0o644))
	port := freePort(t)

	recvErr := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "--quiet", "--dir", dst, "s", port, "out.txt")
		recvErr <- err
	}()

	// The receiver may not be listening yet.
	var sendErr error
	for {
		_, sendErr = execute(ctx, "--quiet", "--dir", src, "c", port, "in.txt")
		if sendErr == nil || ctx.Err() != nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, sendErr)
	require.NoError(t, <-recvErr)

	got, err := os.ReadFile(filepath.Join(dst, "out.txt"))
	require.NoError(t, err)
	require.Equal(t, plain, got)
}
