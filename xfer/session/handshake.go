package session

import (
	"fmt"
	"io"

	"github.com/TheusHen/xfer/xfer/crypto"
	"github.com/TheusHen/xfer/xfer/protocol"
)

// HandshakeInitiator performs the key agreement as the initiating side.
// The initiator sends its key share first.
func HandshakeInitiator(rw io.ReadWriter) (SharedSecret, error) {
	local, err := crypto.GenerateX25519()
	if err != nil {
		return SharedSecret{}, err
	}
	defer local.Wipe()

	if err := protocol.WriteKeyShare(rw, protocol.NewKeyShare(local.PublicKey)); err != nil {
		return SharedSecret{}, fmt.Errorf("send key share: %w", err)
	}
	remote, err := protocol.ReadKeyShare(rw)
	if err != nil {
		return SharedSecret{}, fmt.Errorf("receive key share: %w", err)
	}
	return agree(&local, remote.PublicKey, local.PublicKey, remote.PublicKey)
}

// HandshakeResponder performs the key agreement as the responding side.
func HandshakeResponder(rw io.ReadWriter) (SharedSecret, error) {
	local, err := crypto.GenerateX25519()
	if err != nil {
		return SharedSecret{}, err
	}
	defer local.Wipe()

	remote, err := protocol.ReadKeyShare(rw)
	if err != nil {
		return SharedSecret{}, fmt.Errorf("receive key share: %w", err)
	}
	if err := protocol.WriteKeyShare(rw, protocol.NewKeyShare(local.PublicKey)); err != nil {
		return SharedSecret{}, fmt.Errorf("send key share: %w", err)
	}
	return agree(&local, remote.PublicKey, remote.PublicKey, local.PublicKey)
}

func agree(local *crypto.X25519KeyPair, peer, initiatorPub, responderPub [32]byte) (SharedSecret, error) {
	raw, err := crypto.ECDH(local.PrivateKey, peer)
	if err != nil {
		return SharedSecret{}, err
	}
	defer crypto.Wipe(raw)

	expanded, err := crypto.ExpandSharedSecret(raw, initiatorPub, responderPub)
	if err != nil {
		return SharedSecret{}, err
	}
	defer crypto.Wipe(expanded)
	return NewSharedSecret(expanded)
}
