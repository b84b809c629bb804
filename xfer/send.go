package xfer

import (
	"fmt"
	"io"

	"github.com/TheusHen/xfer/xfer/crypto"
	"github.com/TheusHen/xfer/xfer/protocol"
	"github.com/TheusHen/xfer/xfer/session"
	"github.com/TheusHen/xfer/xfer/transfer"
)

// Report summarises a finished session.
type Report struct {
	Role        session.Role
	PlainBytes  int64  // bytes read from input or written to output
	CipherBytes int64  // ciphertext bytes on the wire, tag excluded
	BlockCount  uint32 // value of the block count header
	Staging     string // staging file path, only set when it was kept
}

// SendConn runs the initiator side over an already connected stream. It
// takes ownership of conn and closes it before returning.
func (p *Peer) SendConn(conn io.ReadWriteCloser, input string) (rep Report, err error) {
	rep.Role = session.RoleInitiator
	logger := p.cfg.Logger

	sess, err := session.Establish(session.RoleInitiator, conn)
	if err != nil {
		_ = conn.Close()
		return rep, err
	}
	defer sess.Close()
	logger.Printf("handshake complete as %s", sess.Role())

	if err := p.dumpSecret(sess); err != nil {
		return rep, err
	}
	keys := sess.Keys()
	defer keys.Wipe()

	in, err := p.dir.OpenInput(input)
	if err != nil {
		return rep, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	staging, err := p.dir.CreateStaging(senderStagingPrefix, p.cfg.KeepStaging)
	if err != nil {
		return rep, fmt.Errorf("create staging file: %w", err)
	}
	defer staging.Close()
	if p.cfg.KeepStaging {
		rep.Staging = staging.Name()
	}

	rep.PlainBytes, err = p.encrypt(staging, in, &keys)
	if err != nil {
		return rep, fmt.Errorf("encrypt: %w", err)
	}
	size, err := staging.Size()
	if err != nil {
		return rep, fmt.Errorf("stat staging file: %w", err)
	}
	if err := staging.Rewind(); err != nil {
		return rep, fmt.Errorf("rewind staging file: %w", err)
	}
	if !p.cfg.Compress && size != crypto.CiphertextSize(rep.PlainBytes) {
		return rep, fmt.Errorf("staging file holds %d bytes, want %d", size, crypto.CiphertextSize(rep.PlainBytes))
	}
	rep.CipherBytes = size

	rep.BlockCount, err = protocol.BlockCountFor(size)
	if err != nil {
		return rep, err
	}
	if err := protocol.WriteBlockCount(sess.Conn(), rep.BlockCount); err != nil {
		return rep, fmt.Errorf("send block count: %w", err)
	}
	if err := transfer.Send(sess.Conn(), staging, size, keys.MACKey[:]); err != nil {
		return rep, fmt.Errorf("send ciphertext: %w", err)
	}
	logger.Printf("sent %d bytes as %d blocks", rep.PlainBytes, rep.BlockCount)
	return rep, nil
}

// encrypt writes the ciphertext of src to dst, compressing first when
// configured. It returns the number of plaintext bytes read.
func (p *Peer) encrypt(dst io.Writer, src io.Reader, keys *crypto.KeyMaterial) (int64, error) {
	cw, err := crypto.NewEncryptWriter(dst, p.cfg.Mode, keys.EncryptionKey[:], keys.IV[:])
	if err != nil {
		return 0, err
	}

	var n int64
	if p.cfg.Compress {
		n, err = transfer.Compress(cw, src, p.cfg.Compression)
	} else {
		n, err = io.Copy(cw, src)
	}
	if err != nil {
		return n, err
	}
	return n, cw.Close()
}

func (p *Peer) dumpSecret(sess *session.Session) error {
	if !p.cfg.DumpSecret {
		return nil
	}
	secret := sess.Secret()
	defer crypto.Wipe(secret[:])
	if err := p.dir.WriteSecret(p.cfg.SecretFile, secret[:]); err != nil {
		return fmt.Errorf("write debug secret: %w", err)
	}
	p.cfg.Logger.Printf("WARNING: shared secret written to %s", p.cfg.SecretFile)
	return nil
}
