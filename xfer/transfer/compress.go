package transfer

import (
	"errors"
	"io"

	"github.com/pierrec/lz4/v4"
)

var (
	ErrCompressionFailed   = errors.New("transfer: compression failed")
	ErrDecompressionFailed = errors.New("transfer: decompression failed")
)

// CompressionLevel controls the speed/ratio tradeoff.
type CompressionLevel int

const (
	CompressionFast    CompressionLevel = iota // Fastest, lower ratio
	CompressionDefault                         // Balanced
	CompressionBest                            // Best ratio, slower
)

func (l CompressionLevel) lz4Level() lz4.CompressionLevel {
	switch l {
	case CompressionFast:
		return lz4.Fast
	case CompressionBest:
		return lz4.Level9
	default:
		return lz4.Level4
	}
}

// NewCompressWriter wraps dst in an LZ4 frame writer. Closing it flushes the
// frame but does not close dst.
func NewCompressWriter(dst io.Writer, level CompressionLevel) (io.WriteCloser, error) {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(level.lz4Level())); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	return w, nil
}

// NewDecompressReader reads an LZ4 frame from src.
func NewDecompressReader(src io.Reader) io.Reader {
	return &decompressReader{r: lz4.NewReader(src)}
}

type decompressReader struct {
	r *lz4.Reader
}

func (d *decompressReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.Join(ErrDecompressionFailed, err)
	}
	return n, err
}

// Compress copies src into dst as one LZ4 frame.
func Compress(dst io.Writer, src io.Reader, level CompressionLevel) (int64, error) {
	w, err := NewCompressWriter(dst, level)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, errors.Join(ErrCompressionFailed, err)
	}
	return n, nil
}

// Decompress copies the decoded LZ4 frame in src to dst.
func Decompress(dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, NewDecompressReader(src))
}
