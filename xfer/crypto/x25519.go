package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// X25519KeyPair is an ephemeral ECDH keypair. A fresh one is generated for
// every session.
type X25519KeyPair struct {
	PublicKey  [32]byte
	PrivateKey [32]byte
}

var (
	ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")
)

// GenerateX25519 generates a new ephemeral X25519 keypair.
func GenerateX25519() (X25519KeyPair, error) {
	var kp X25519KeyPair
	if _, err := io.ReadFull(rand.Reader, kp.PrivateKey[:]); err != nil {
		return X25519KeyPair{}, err
	}
	// Clamp private key per RFC 7748
	kp.PrivateKey[0] &= 248
	kp.PrivateKey[31] &= 127
	kp.PrivateKey[31] |= 64

	curve25519.ScalarBaseMult(&kp.PublicKey, &kp.PrivateKey)
	return kp, nil
}

// Wipe zeroes the private half of the keypair.
func (kp *X25519KeyPair) Wipe() {
	Wipe(kp.PrivateKey[:])
}

// ECDH computes the raw X25519 agreement with the peer's public key.
// The 32-byte result must go through ExpandSharedSecret before use.
func ECDH(privateKey, peerPublicKey [32]byte) ([]byte, error) {
	var zero [32]byte
	if peerPublicKey == zero {
		return nil, ErrInvalidPublicKey
	}
	shared, err := curve25519.X25519(privateKey[:], peerPublicKey[:])
	if err != nil {
		// low-order point
		return nil, ErrInvalidPublicKey
	}
	return shared, nil
}
