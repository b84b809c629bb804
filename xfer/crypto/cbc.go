package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"io"
)

// BlockSize is the AES block size. Ciphertext is always a positive multiple
// of it.
const BlockSize = aes.BlockSize

const readChunk = 64 * BlockSize

var (
	ErrWriterClosed       = errors.New("crypto: write to closed cipher stream")
	ErrInvalidCiphertext  = errors.New("crypto: ciphertext is not a positive multiple of the block size")
	ErrInvalidPadding     = errors.New("crypto: invalid padding")
	ErrInvalidKeyMaterial = errors.New("crypto: key and iv must be 16 bytes")
)

func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize || len(iv) != BlockSize {
		return nil, ErrInvalidKeyMaterial
	}
	return aes.NewCipher(key)
}

// cbcWriter encrypts everything written to it with AES-128-CBC. Full blocks
// are flushed as soon as they are available; the tail is padded on Close.
type cbcWriter struct {
	dst     io.Writer
	mode    cipher.BlockMode
	pending []byte
	out     []byte
	closed  bool
}

// NewEncryptWriter returns a WriteCloser that encrypts into dst. Close must be
// called to emit the final padded block; it does not close dst.
func NewEncryptWriter(dst io.Writer, mode Mode, key, iv []byte) (io.WriteCloser, error) {
	if err := mode.validate(); err != nil {
		return nil, err
	}
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	return &cbcWriter{
		dst:  dst,
		mode: cipher.NewCBCEncrypter(block, iv),
	}, nil
}

func (w *cbcWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	w.pending = append(w.pending, p...)
	full := len(w.pending) - len(w.pending)%BlockSize
	if full == 0 {
		return len(p), nil
	}
	if err := w.flush(w.pending[:full]); err != nil {
		return 0, err
	}
	w.pending = append(w.pending[:0], w.pending[full:]...)
	return len(p), nil
}

func (w *cbcWriter) flush(plain []byte) error {
	if cap(w.out) < len(plain) {
		w.out = make([]byte, len(plain))
	}
	out := w.out[:len(plain)]
	w.mode.CryptBlocks(out, plain)
	_, err := w.dst.Write(out)
	return err
}

func (w *cbcWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	padded := pkcs7Pad(w.pending)
	w.pending = nil
	return w.flush(padded)
}

// cbcReader decrypts an AES-128-CBC stream. The last decrypted block is held
// back until EOF so its padding can be removed.
type cbcReader struct {
	src   io.Reader
	mode  cipher.BlockMode
	buf   []byte
	raw   []byte
	held  []byte
	ready []byte
	err   error
}

// NewDecryptReader returns a Reader yielding the plaintext of src. A
// truncated stream or bad padding surfaces as an error from Read.
func NewDecryptReader(src io.Reader, mode Mode, key, iv []byte) (io.Reader, error) {
	if err := mode.validate(); err != nil {
		return nil, err
	}
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}
	return &cbcReader{
		src:  src,
		mode: cipher.NewCBCDecrypter(block, iv),
		buf:  make([]byte, readChunk),
	}, nil
}

func (r *cbcReader) Read(p []byte) (int, error) {
	for len(r.ready) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
	n := copy(p, r.ready)
	r.ready = r.ready[n:]
	return n, nil
}

func (r *cbcReader) fill() {
	n, err := r.src.Read(r.buf)
	r.raw = append(r.raw, r.buf[:n]...)

	if full := len(r.raw) - len(r.raw)%BlockSize; full > 0 {
		plain := make([]byte, full)
		r.mode.CryptBlocks(plain, r.raw[:full])
		r.raw = append(r.raw[:0], r.raw[full:]...)

		r.ready = append(r.ready, r.held...)
		r.ready = append(r.ready, plain[:full-BlockSize]...)
		r.held = append(r.held[:0], plain[full-BlockSize:]...)
	}

	switch {
	case err == io.EOF:
		if len(r.raw) != 0 || len(r.held) == 0 {
			r.err = ErrInvalidCiphertext
			return
		}
		plain, perr := pkcs7Unpad(r.held)
		if perr != nil {
			r.err = perr
			return
		}
		r.ready = append(r.ready, plain...)
		r.held = nil
		r.err = io.EOF
	case err != nil:
		r.err = err
	}
}

// CiphertextSize returns the ciphertext length for a plaintext of n bytes.
func CiphertextSize(n int64) int64 {
	return (n/BlockSize + 1) * BlockSize
}

func pkcs7Pad(tail []byte) []byte {
	pad := BlockSize - len(tail)%BlockSize
	out := make([]byte, len(tail)+pad)
	copy(out, tail)
	for i := len(tail); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(block []byte) ([]byte, error) {
	if len(block) == 0 || len(block)%BlockSize != 0 {
		return nil, ErrInvalidPadding
	}
	pad := int(block[len(block)-1])
	if pad == 0 || pad > BlockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range block[len(block)-pad:] {
		if int(b) != pad {
			return nil, ErrInvalidPadding
		}
	}
	return block[:len(block)-pad], nil
}
