package compression

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (NoCompressor) Name() string {
	return "none"
}

// Compress reports that data is stored as is.
func (NoCompressor) Compress([]byte) ([]byte, error) {
	return nil, nil
}

// Decompress returns a copy of data.
func (NoCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, ErrCorrupt
	}
	return bytes.Clone(data), nil
}

// LZ4Compressor implements LZ4 block compression.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// incompressible
		return nil, nil
	}
	return compressed[:n], nil
}

// Decompress decompresses LZ4 data of known original size.
func (LZ4Compressor) Decompress(data []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, n, size)
	}
	return out, nil
}
