package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SharedSecretSize is the length of the secret both peers hold after the
// handshake.
const SharedSecretSize = 64

const sharedSecretInfo = "xfer shared secret v1"

// DeriveKey derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ExpandSharedSecret turns a raw ECDH output into the SharedSecretSize-byte
// session secret. Both public keys are bound into the HKDF info, initiator
// first, so both peers must pass them in the same order.
func ExpandSharedSecret(raw []byte, initiatorPub, responderPub [32]byte) ([]byte, error) {
	info := make([]byte, 0, len(sharedSecretInfo)+64)
	info = append(info, sharedSecretInfo...)
	info = append(info, initiatorPub[:]...)
	info = append(info, responderPub[:]...)
	return DeriveKey(raw, nil, info, SharedSecretSize)
}
