// Package compression frames stored records with an optional compressed body.
package compression

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrCorrupt is returned when a frame cannot be decoded.
var ErrCorrupt = errors.New("corrupt compressed frame")

// Compressor defines the interface for compression algorithms.
type Compressor interface {
	// Name returns the name of the compression algorithm.
	Name() string

	// Compress compresses the input data. A nil result with no error means
	// the data does not compress.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data into a buffer of exactly size bytes.
	Decompress(data []byte, size int) ([]byte, error)
}

// Factory is a function that creates a new compressor instance.
type Factory func() Compressor

var (
	mu          sync.RWMutex
	compressors = make(map[string]Factory)
)

// Register registers a compressor factory with the given name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	compressors[name] = factory
}

// Get returns a new compressor instance for the given name.
func Get(name string) (Compressor, error) {
	mu.RLock()
	factory, ok := compressors[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown compressor: %s", name)
	}

	return factory(), nil
}

// Available returns the sorted names of available compressors.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable checks if a compressor with the given name is available.
func IsAvailable(name string) bool {
	mu.RLock()
	_, ok := compressors[name]
	mu.RUnlock()
	return ok
}

func init() {
	Register("none", func() Compressor { return NoCompressor{} })
	Register("lz4", func() Compressor { return LZ4Compressor{} })
}

// Frame tags
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

// Codec frames values as tag | uvarint(length) | body. Only lz4 produces
// compressed bodies.
type Codec struct {
	c Compressor
}

// NewCodec returns a codec compressing with c.
func NewCodec(c Compressor) *Codec {
	return &Codec{c: c}
}

// Encode frames data, compressing it when that makes it smaller.
func (k *Codec) Encode(data []byte) ([]byte, error) {
	tag, body := tagRaw, data
	compressed, err := k.c.Compress(data)
	if err != nil {
		return nil, err
	}
	if compressed != nil && len(compressed) < len(data) {
		tag, body = tagLZ4, compressed
	}
	out := make([]byte, 1, 1+binary.MaxVarintLen64+len(body))
	out[0] = tag
	out = binary.AppendUvarint(out, uint64(len(data)))
	return append(out, body...), nil
}

// Decode reverses Encode. Frames written by any codec decode.
func (k *Codec) Decode(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, ErrCorrupt
	}
	size, n := binary.Uvarint(frame[1:])
	if n <= 0 {
		return nil, ErrCorrupt
	}
	body := frame[1+n:]
	switch frame[0] {
	case tagRaw:
		if uint64(len(body)) != size {
			return nil, ErrCorrupt
		}
		return bytes.Clone(body), nil
	case tagLZ4:
		return LZ4Compressor{}.Decompress(body, int(size))
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrCorrupt, frame[0])
	}
}
