package transfer

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
)

const (
	// BlockSize is the unit the receiver counts ciphertext in.
	BlockSize = 16
	// TagSize is the length of the trailing authentication tag.
	TagSize = 16
	// MACKeySize is the expected MAC key length.
	MACKeySize = 16
)

var (
	ErrAuthenticationFailed = errors.New("transfer: authentication tag mismatch")
	ErrShortCiphertext      = errors.New("transfer: stream ended before the announced ciphertext")
	ErrShortTag             = errors.New("transfer: stream ended before the authentication tag")
	ErrInvalidMACKey        = errors.New("transfer: mac key must be 16 bytes")
	ErrUnalignedCiphertext  = errors.New("transfer: ciphertext length is not a multiple of the block size")
)

func newMAC(key []byte) (hash.Hash, error) {
	if len(key) != MACKeySize {
		return nil, ErrInvalidMACKey
	}
	return hmac.New(sha256.New, key), nil
}

func tag(mac hash.Hash) []byte {
	return mac.Sum(nil)[:TagSize]
}

// Send copies exactly size bytes of ciphertext from r to w, then writes the
// tag computed over those bytes with macKey.
func Send(w io.Writer, r io.Reader, size int64, macKey []byte) error {
	if size%BlockSize != 0 {
		return fmt.Errorf("%w: %d", ErrUnalignedCiphertext, size)
	}
	mac, err := newMAC(macKey)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 32*1024)
	n, err := io.CopyN(io.MultiWriter(bw, mac), r, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("staging file shrank: copied %d of %d bytes", n, size)
		}
		return err
	}
	if _, err := bw.Write(tag(mac)); err != nil {
		return err
	}
	return bw.Flush()
}

// Receive reads blockCount blocks of ciphertext from r into w and then reads
// and checks the tag. A wrong tag yields ErrAuthenticationFailed; a stream
// that ends early yields ErrShortCiphertext or ErrShortTag. In every error
// case the bytes already written to w must be treated as untrusted.
func Receive(r io.Reader, w io.Writer, blockCount uint32, macKey []byte) error {
	mac, err := newMAC(macKey)
	if err != nil {
		return err
	}

	want := int64(blockCount) * BlockSize
	n, err := io.CopyN(io.MultiWriter(w, mac), r, want)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: got %d of %d bytes", ErrShortCiphertext, n, want)
		}
		return err
	}

	var got [TagSize]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortTag
		}
		return err
	}
	if !hmac.Equal(got[:], tag(mac)) {
		return ErrAuthenticationFailed
	}
	return nil
}
