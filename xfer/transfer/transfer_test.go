package transfer

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomBytes(t testing.TB, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func sendToBuffer(t *testing.T, ciphertext, key []byte) []byte {
	t.Helper()
	var wire bytes.Buffer
	require.NoError(t, Send(&wire, bytes.NewReader(ciphertext), int64(len(ciphertext)), key))
	return wire.Bytes()
}

func TestSendReceiveRoundTrip(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	for _, blocks := range []int{0, 1, 2, 1000} {
		ciphertext := randomBytes(t, blocks*BlockSize)
		wire := sendToBuffer(t, ciphertext, key)
		require.Len(t, wire, len(ciphertext)+TagSize)

		var staged bytes.Buffer
		err := Receive(bytes.NewReader(wire), &staged, uint32(blocks), key)
		require.NoError(t, err, "blocks=%d", blocks)
		require.Equal(t, ciphertext, staged.Bytes())
	}
}

func TestSendAppendsTagOverCiphertext(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	ciphertext := randomBytes(t, 2*BlockSize)
	wire := sendToBuffer(t, ciphertext, key)

	mac := hmac.New(sha256.New, key)
	mac.Write(ciphertext)
	want := mac.Sum(nil)[:TagSize]
	require.Equal(t, ciphertext, wire[:len(ciphertext)])
	require.Equal(t, want, wire[len(ciphertext):])
}

func TestReceiveRejectsEveryBitFlip(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	ciphertext := randomBytes(t, BlockSize)
	wire := sendToBuffer(t, ciphertext, key)

	for i := 0; i < len(wire)*8; i++ {
		tampered := append([]byte(nil), wire...)
		tampered[i/8] ^= 1 << (i % 8)

		err := Receive(bytes.NewReader(tampered), io.Discard, 1, key)
		require.ErrorIs(t, err, ErrAuthenticationFailed, "bit %d", i)
	}
}

func TestReceiveRejectsWrongKey(t *testing.T) {
	ciphertext := randomBytes(t, 4*BlockSize)
	wire := sendToBuffer(t, ciphertext, randomBytes(t, MACKeySize))

	err := Receive(bytes.NewReader(wire), io.Discard, 4, randomBytes(t, MACKeySize))
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestReceiveBlockCountMismatch(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	ciphertext := randomBytes(t, 3*BlockSize)
	wire := sendToBuffer(t, ciphertext, key)

	// Announced fewer blocks than sent: the tag is read from ciphertext.
	err := Receive(bytes.NewReader(wire), io.Discard, 2, key)
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	// Announced one block more than sent: the tag is consumed as
	// ciphertext and the real tag is missing.
	err = Receive(bytes.NewReader(wire), io.Discard, 4, key)
	require.ErrorIs(t, err, ErrShortTag)

	// Announced far more than sent.
	err = Receive(bytes.NewReader(wire), io.Discard, 10, key)
	require.ErrorIs(t, err, ErrShortCiphertext)
}

func TestReceiveTruncatedTag(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	wire := sendToBuffer(t, randomBytes(t, BlockSize), key)

	err := Receive(bytes.NewReader(wire[:len(wire)-1]), io.Discard, 1, key)
	require.ErrorIs(t, err, ErrShortTag)
}

func TestSendValidation(t *testing.T) {
	key := randomBytes(t, MACKeySize)
	err := Send(io.Discard, bytes.NewReader(make([]byte, 10)), 10, key)
	require.ErrorIs(t, err, ErrUnalignedCiphertext)

	err = Send(io.Discard, bytes.NewReader(make([]byte, 16)), 16, key[:8])
	require.ErrorIs(t, err, ErrInvalidMACKey)

	err = Send(io.Discard, bytes.NewReader(make([]byte, 16)), 32, key)
	require.Error(t, err)

	err = Receive(bytes.NewReader(nil), io.Discard, 0, nil)
	require.ErrorIs(t, err, ErrInvalidMACKey)
}

func BenchmarkSend(b *testing.B) {
	key := randomBytes(b, MACKeySize)
	ciphertext := randomBytes(b, 64*1024)
	b.SetBytes(int64(len(ciphertext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Send(io.Discard, bytes.NewReader(ciphertext), int64(len(ciphertext)), key)
	}
}
