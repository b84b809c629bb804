package commands

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheusHen/xfer/xfer"
	"github.com/TheusHen/xfer/xfer/transport"
)

const (
	modeSend    = "c"
	modeReceive = "s"
)

const (
	ExitOK       = 0
	ExitFatal    = 1
	ExitRejected = 2
)

const longHelp = `Required arguments:
  mode  c sends the file (client), s receives it (server).
  port  Clients connect to it, servers listen on it. Communication is on
        localhost unless --host says otherwise.
  path  File name relative to --dir. Clients read it, servers write to it.

The server writes the file only after the authentication tag has been
verified. A rejected transfer leaves no output and exits with status 2.`

type options struct {
	dir         string
	host        string
	transport   string
	dumpSecret  bool
	secretFile  string
	compress    bool
	keepStaging bool
	quiet       bool
}

func (o *options) config(stderr io.Writer) xfer.Config {
	cfg := xfer.DefaultConfig()
	cfg.Dir = o.dir
	cfg.Host = o.host
	cfg.Transport = o.transport
	cfg.DumpSecret = o.dumpSecret
	cfg.SecretFile = o.secretFile
	cfg.Compress = o.compress
	cfg.KeepStaging = o.keepStaging
	cfg.Logger = log.New(stderr, "xfer: ", log.LstdFlags)
	if o.quiet {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return cfg
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "xfer <c|s> <port> <path>",
		Short:         "Send one file to a peer with encryption and a verified tag",
		Long:          longHelp,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 {
				return cmd.Help()
			}
			cfg := opts.config(cmd.ErrOrStderr())
			port := transport.ParsePort(args[1])

			switch args[0] {
			case modeSend:
				return runSend(cmd.Context(), cfg, port, args[2])
			case modeReceive:
				return runReceive(cmd.Context(), cfg, port, args[2])
			default:
				return cmd.Help()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	d := xfer.DefaultConfig()
	f := root.Flags()
	f.StringVar(&opts.dir, "dir", "", "base directory for every file (default current directory)")
	f.StringVar(&opts.host, "host", d.Host, "host to connect to or listen on")
	f.StringVar(&opts.transport, "transport", d.Transport, "transport: tcp or quic")
	f.BoolVar(&opts.dumpSecret, "dump-secret", false, "write the shared secret to --secret-file (debugging only)")
	f.StringVar(&opts.secretFile, "secret-file", d.SecretFile, "file name for --dump-secret")
	f.BoolVar(&opts.compress, "compress", false, "compress the file before encryption; both peers must agree")
	f.BoolVar(&opts.keepStaging, "keep-staging", false, "keep staging ciphertext files")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress logging")
	return root
}

func runSend(ctx context.Context, cfg xfer.Config, port uint16, input string) error {
	p, err := xfer.NewPeer(cfg)
	if err != nil {
		return err
	}
	_, err = p.Send(ctx, port, input)
	return err
}

func runReceive(ctx context.Context, cfg xfer.Config, port uint16, output string) error {
	p, err := xfer.NewPeer(cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := p.Listen(ctx, port); err != nil {
		return err
	}
	_, err = p.Receive(ctx, output)
	return err
}

// Execute runs the CLI with the process arguments. SIGINT and SIGTERM cancel
// a pending connect or accept.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// ExitCode maps the error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, xfer.ErrAuthenticationFailed):
		return ExitRejected
	default:
		return ExitFatal
	}
}
