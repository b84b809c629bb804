package xfer

import (
	"log"
	"os"

	"github.com/TheusHen/xfer/xfer/crypto"
	"github.com/TheusHen/xfer/xfer/transfer"
	"github.com/TheusHen/xfer/xfer/transport"
)

const (
	DefaultHost       = "127.0.0.1"
	DefaultSecretFile = "sharedKey"

	senderStagingPrefix   = "outEncryptedFile"
	receiverStagingPrefix = "inEncryptedFile"
)

// Config configures a Peer.
type Config struct {
	Dir         string                   // base directory for every file; "" is the working directory
	Host        string                   // host to dial or listen on
	Transport   string                   // transport.NameTCP or transport.NameQUIC
	Mode        crypto.Mode              // block cipher mode selector
	Compress    bool                     // LZ4 the plaintext before encryption; both peers must agree
	Compression transfer.CompressionLevel
	DumpSecret  bool        // write the raw shared secret to SecretFile; debugging only
	SecretFile  string      // name of the debug secret file inside Dir
	KeepStaging bool        // keep staging ciphertext files after the session
	Logger      *log.Logger // progress log; nil means the DefaultConfig logger
}

// DefaultConfig returns the configuration the command line starts from.
func DefaultConfig() Config {
	return Config{
		Host:        DefaultHost,
		Transport:   transport.NameTCP,
		Mode:        crypto.ModeDefault,
		Compression: transfer.CompressionDefault,
		SecretFile:  DefaultSecretFile,
		Logger:      log.New(os.Stderr, "xfer: ", log.LstdFlags),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Transport == "" {
		c.Transport = d.Transport
	}
	if c.Mode == 0 {
		c.Mode = d.Mode
	}
	if c.SecretFile == "" {
		c.SecretFile = d.SecretFile
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}
