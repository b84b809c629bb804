package crypto

import (
	"errors"
	"fmt"
)

const (
	// KeySize is the length of each derived key material.
	KeySize = 16

	encryptionKeyOffset = 0
	ivOffset            = 16
	macKeyOffset        = 32

	// MinSecretSize is the shortest secret DeriveKeyMaterial accepts.
	// Bytes past it are reserved and never read.
	MinSecretSize = macKeyOffset + KeySize
)

var ErrSecretTooShort = errors.New("crypto: shared secret too short for key derivation")

// KeyMaterial holds the three per-session keys sliced out of the shared
// secret. Both peers derive it identically from the same secret.
type KeyMaterial struct {
	EncryptionKey [KeySize]byte
	IV            [KeySize]byte
	MACKey        [KeySize]byte
}

// DeriveKeyMaterial copies secret[0:16], secret[16:32] and secret[32:48]
// into the encryption key, IV and MAC key respectively.
func DeriveKeyMaterial(secret []byte) (KeyMaterial, error) {
	if len(secret) < MinSecretSize {
		return KeyMaterial{}, fmt.Errorf("%w: got %d bytes, need %d", ErrSecretTooShort, len(secret), MinSecretSize)
	}
	var km KeyMaterial
	copy(km.EncryptionKey[:], secret[encryptionKeyOffset:encryptionKeyOffset+KeySize])
	copy(km.IV[:], secret[ivOffset:ivOffset+KeySize])
	copy(km.MACKey[:], secret[macKeyOffset:macKeyOffset+KeySize])
	return km, nil
}

// Wipe zeroes all three keys.
func (km *KeyMaterial) Wipe() {
	Wipe(km.EncryptionKey[:])
	Wipe(km.IV[:])
	Wipe(km.MACKey[:])
}
