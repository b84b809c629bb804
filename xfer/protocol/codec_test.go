package protocol

import (
	"bytes"
	"encoding/hex"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Frame{Type: MessageTypeKeyShare, Payload: []byte("ok")}
	require.NoError(t, WriteFrame(&buf, in))

	out, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, in.Type, out.Type)
	require.Equal(t, in.Payload, out.Payload)
}

func TestReadFrameDoesNotOverRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: MessageTypeKeyShare, Payload: []byte("abc")}))
	require.NoError(t, WriteBlockCount(&buf, 7))

	_, err := ReadFrame(&buf)
	require.NoError(t, err)
	n, err := ReadBlockCount(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}

func TestFrameErrors(t *testing.T) {
	require.ErrorIs(t, WriteFrame(io.Discard, Frame{}), ErrInvalidType)
	require.ErrorIs(t,
		WriteFrame(io.Discard, Frame{Type: MessageTypeKeyShare, Payload: make([]byte, MaxFramePayload+1)}),
		ErrFrameTooLarge)

	huge := []byte{byte(MessageTypeKeyShare), 0xff, 0xff, 0xff, 0xff}
	_, err := ReadFrame(bytes.NewReader(huge))
	require.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0, 0}))
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = ReadFrame(bytes.NewReader([]byte{1, 0, 0, 0, 4, 'a'}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBlockCountHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlockCount(&buf, 1))
	require.Equal(t, "00000001", hex.EncodeToString(buf.Bytes()))

	buf.Reset()
	require.NoError(t, WriteBlockCount(&buf, 0x01020304))
	require.Equal(t, []byte{1, 2, 3, 4}, buf.Bytes(), "header is not big endian")
	n, err := ReadBlockCount(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 0x01020304, n)

	_, err = ReadBlockCount(bytes.NewReader([]byte{0, 1}))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBlockCountFor(t *testing.T) {
	cases := []struct {
		size int64
		want uint32
	}{
		{0, 0},
		{1, 1},
		{16, 1},
		{17, 2},
		{32, 2},
		{int64(math.MaxUint32) * 16, math.MaxUint32},
	}
	for _, tc := range cases {
		got, err := BlockCountFor(tc.size)
		require.NoError(t, err, "BlockCountFor(%d)", tc.size)
		require.Equal(t, tc.want, got, "BlockCountFor(%d)", tc.size)
	}

	_, err := BlockCountFor(int64(math.MaxUint32)*16 + 1)
	require.ErrorIs(t, err, ErrCiphertextTooLarge)
	_, err = BlockCountFor(-1)
	require.Error(t, err)
}
