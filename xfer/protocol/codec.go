package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// MaxFramePayload limits a single handshake frame payload.
	MaxFramePayload = 4 << 10

	// FrameHeaderSize is the type byte plus the 4-byte length.
	FrameHeaderSize = 5

	// BlockCountSize is the size of the ciphertext length header.
	BlockCountSize = 4

	// CipherBlockSize is the unit the block count is expressed in.
	CipherBlockSize = 16
)

var (
	ErrFrameTooLarge      = errors.New("protocol: frame payload too large")
	ErrInvalidType        = errors.New("protocol: invalid message type")
	ErrCiphertextTooLarge = errors.New("protocol: ciphertext block count overflows 32 bits")
)

// Frame is the container for handshake messages.
// Format:
//
//	1 byte: type
//	4 bytes: payload length (big endian)
//	N bytes: payload
//
// Frames are only used before key material exists; the file payload that
// follows is not framed.
type Frame struct {
	Type    MessageType
	Payload []byte
}

func WriteFrame(w io.Writer, f Frame) error {
	if f.Type == 0 {
		return ErrInvalidType
	}
	if len(f.Payload) > MaxFramePayload {
		return ErrFrameTooLarge
	}

	bw := bufio.NewWriter(w)
	if err := bw.WriteByte(byte(f.Type)); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f.Payload)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := bw.Write(f.Payload); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFrame reads exactly one frame. It never reads past the frame, so the
// stream can be handed on to the unframed transfer afterwards.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}
	mt := MessageType(hdr[0])
	if mt == 0 {
		return Frame{}, ErrInvalidType
	}
	payloadLen := binary.BigEndian.Uint32(hdr[1:])
	if payloadLen > MaxFramePayload {
		return Frame{}, fmt.Errorf("%w: %d", ErrFrameTooLarge, payloadLen)
	}
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: mt, Payload: payload}, nil
}

// BlockCountFor returns ceil(size/CipherBlockSize).
func BlockCountFor(size int64) (uint32, error) {
	if size < 0 {
		return 0, fmt.Errorf("protocol: negative ciphertext size %d", size)
	}
	blocks := (size + CipherBlockSize - 1) / CipherBlockSize
	if blocks > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrCiphertextTooLarge, size)
	}
	return uint32(blocks), nil
}

// WriteBlockCount writes the 4-byte big-endian block count header.
func WriteBlockCount(w io.Writer, count uint32) error {
	var buf [BlockCountSize]byte
	binary.BigEndian.PutUint32(buf[:], count)
	_, err := w.Write(buf[:])
	return err
}

// ReadBlockCount reads the header written by WriteBlockCount.
func ReadBlockCount(r io.Reader) (uint32, error) {
	var buf [BlockCountSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
