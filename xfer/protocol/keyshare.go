package protocol

import (
	"errors"
	"fmt"
	"io"
)

// KeyShareVersion is the only handshake version this package speaks.
const KeyShareVersion uint8 = 1

// KeyShareSize is the encoded length of a KeyShare payload.
const KeyShareSize = 1 + 32

var (
	ErrKeyShareVersion = errors.New("protocol: unsupported key share version")
	ErrKeyShareLength  = errors.New("protocol: malformed key share")
)

// KeyShare carries one side's ephemeral X25519 public key.
type KeyShare struct {
	Version   uint8
	PublicKey [32]byte
}

func NewKeyShare(pub [32]byte) KeyShare {
	return KeyShare{Version: KeyShareVersion, PublicKey: pub}
}

func EncodeKeyShare(ks KeyShare) []byte {
	out := make([]byte, KeyShareSize)
	out[0] = ks.Version
	copy(out[1:], ks.PublicKey[:])
	return out
}

func DecodeKeyShare(b []byte) (KeyShare, error) {
	if len(b) != KeyShareSize {
		return KeyShare{}, fmt.Errorf("%w: %d bytes", ErrKeyShareLength, len(b))
	}
	if b[0] != KeyShareVersion {
		return KeyShare{}, fmt.Errorf("%w: %d", ErrKeyShareVersion, b[0])
	}
	var ks KeyShare
	ks.Version = b[0]
	copy(ks.PublicKey[:], b[1:])
	return ks, nil
}

// WriteKeyShare sends ks as a KEY_SHARE frame.
func WriteKeyShare(w io.Writer, ks KeyShare) error {
	return WriteFrame(w, Frame{Type: MessageTypeKeyShare, Payload: EncodeKeyShare(ks)})
}

// ReadKeyShare reads one frame and decodes it as a key share.
func ReadKeyShare(r io.Reader) (KeyShare, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return KeyShare{}, err
	}
	if f.Type != MessageTypeKeyShare {
		return KeyShare{}, fmt.Errorf("%w: expected %s, got %s", ErrInvalidType, MessageTypeKeyShare, f.Type)
	}
	return DecodeKeyShare(f.Payload)
}
