package entries

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
)

var (
	ErrWrongType       = errors.New("record type mismatch")
	ErrUnknownVersion  = errors.New("unknown record version")
	ErrBadRecordLength = errors.New("bad record length")
)

// header prefixes every stored record.
type header struct {
	Type     uint16
	Version  uint8
	Reserved uint8
}

var headerSize = binary.Size(header{})

func encodeRecord(t entry.Type, version uint8, layout any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + binary.Size(layout))
	if err := binary.Write(&buf, binary.LittleEndian, header{Type: uint16(t), Version: version}); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, layout); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", t, err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, t entry.Type, version uint8, layout any) error {
	got, v, err := peek(data)
	if err != nil {
		return err
	}
	if got != t {
		return fmt.Errorf("%w: want %s, have %s", ErrWrongType, t, got)
	}
	if v != version {
		return fmt.Errorf("%w: %s v%d", ErrUnknownVersion, t, v)
	}
	if want := headerSize + binary.Size(layout); len(data) != want {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrBadRecordLength, t, len(data), want)
	}
	return binary.Read(bytes.NewReader(data[headerSize:]), binary.LittleEndian, layout)
}

func peek(data []byte) (entry.Type, uint8, error) {
	if len(data) < headerSize {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrBadRecordLength, len(data))
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return 0, 0, err
	}
	return entry.Type(h.Type), h.Version, nil
}

// PeekType returns the record type stored in data without decoding the body.
func PeekType(data []byte) (entry.Type, error) {
	t, _, err := peek(data)
	return t, err
}

// Decode decodes any known record.
func Decode(data []byte) (entry.Entry, error) {
	t, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case entry.TypeAmmConfig:
		return DecodeAmmConfig(data)
	case entry.TypePool:
		return DecodePool(data)
	case entry.TypeMint:
		return DecodeMint(data)
	case entry.TypeTokenAccount:
		return DecodeTokenAccount(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrWrongType, t)
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
