package xfer

import (
	"errors"
	"fmt"
	"io"

	"github.com/TheusHen/xfer/xfer/crypto"
	"github.com/TheusHen/xfer/xfer/protocol"
	"github.com/TheusHen/xfer/xfer/session"
	"github.com/TheusHen/xfer/xfer/transfer"
)

// ReceiveConn runs the responder side over an already connected stream. It
// takes ownership of conn and closes it before returning.
//
// When the tag does not verify the returned error wraps
// ErrAuthenticationFailed and output is never opened.
func (p *Peer) ReceiveConn(conn io.ReadWriteCloser, output string) (rep Report, err error) {
	rep.Role = session.RoleResponder
	logger := p.cfg.Logger

	sess, err := session.Establish(session.RoleResponder, conn)
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

	rep.BlockCount, err = protocol.ReadBlockCount(sess.Conn())
	if err != nil {
		return rep, fmt.Errorf("receive block count: %w", err)
	}
	rep.CipherBytes = int64(rep.BlockCount) * protocol.CipherBlockSize

	staging, err := p.dir.CreateStaging(receiverStagingPrefix, p.cfg.KeepStaging)
	if err != nil {
		return rep, fmt.Errorf("create staging file: %w", err)
	}
	defer staging.Close()
	if p.cfg.KeepStaging {
		rep.Staging = staging.Name()
	}

	if err := transfer.Receive(sess.Conn(), staging, rep.BlockCount, keys.MACKey[:]); err != nil {
		if errors.Is(err, transfer.ErrAuthenticationFailed) {
			return rep, err
		}
		return rep, fmt.Errorf("receive ciphertext: %w", err)
	}
	logger.Printf("received %d blocks, tag verified", rep.BlockCount)

	if err := staging.Rewind(); err != nil {
		return rep, fmt.Errorf("rewind staging file: %w", err)
	}
	rep.PlainBytes, err = p.decryptTo(output, staging, &keys)
	if err != nil {
		return rep, err
	}
	logger.Printf("wrote %d bytes to %s", rep.PlainBytes, output)
	return rep, nil
}

// decryptTo writes the plaintext of src to output. The output replaces a
// previous file of the same name only once decryption has finished, so a
// failure leaves the previous file untouched.
func (p *Peer) decryptTo(output string, src io.Reader, keys *crypto.KeyMaterial) (int64, error) {
	r, err := crypto.NewDecryptReader(src, p.cfg.Mode, keys.EncryptionKey[:], keys.IV[:])
	if err != nil {
		return 0, fmt.Errorf("decrypt: %w", err)
	}

	out, err := p.dir.CreateOutput(output)
	if err != nil {
		return 0, fmt.Errorf("open output: %w", err)
	}
	defer out.Abort()

	var n int64
	if p.cfg.Compress {
		n, err = transfer.Decompress(out, r)
	} else {
		n, err = io.Copy(out, r)
	}
	if err != nil {
		return n, fmt.Errorf("decrypt: %w", err)
	}
	if err := out.Commit(); err != nil {
		return n, fmt.Errorf("write output: %w", err)
	}
	return n, nil
}
