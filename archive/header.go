package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed size of the container header in bytes.
//
// Layout, little endian:
//
//	0-3    magic "TRMB"
//	4-5    format version
//	6      compression type
//	7      reserved, zero
//	8-15   payload size before compression
//	16-23  payload size as stored
//	24-31  xxhash64 of the stored payload
const HeaderSize = 32

const (
	magic         = "TRMB"
	formatVersion = uint16(1)

	// maxPayloadSize bounds the decompressed payload to keep a forged header from forcing a huge
	// allocation
	maxPayloadSize = 1 << 32
)

var (
	ErrInvalidHeaderSize = errors.New("invalid archive header size")
	ErrInvalidMagic      = errors.New("not a model archive")
	ErrUnsupportedFormat = errors.New("unsupported archive format version")
	ErrPayloadTooLarge   = errors.New("archive payload is too large")
	ErrSizeMismatch      = errors.New("archive payload size does not match header")
	ErrChecksumMismatch  = errors.New("archive payload checksum mismatch")
)

type header struct {
	Version     uint16
	Compression CompressionType
	RawSize     uint64
	StoredSize  uint64
	Checksum    uint64
}

func (h *header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], magic)
	binary.LittleEndian.PutUint16(b[4:6], h.Version)
	b[6] = byte(h.Compression)
	binary.LittleEndian.PutUint64(b[8:16], h.RawSize)
	binary.LittleEndian.PutUint64(b[16:24], h.StoredSize)
	binary.LittleEndian.PutUint64(b[24:32], h.Checksum)
	return b
}

func (h *header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("got %d bytes, %w", len(data), ErrInvalidHeaderSize)
	}
	if string(data[0:4]) != magic {
		return ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != formatVersion {
		return fmt.Errorf("version %d, %w", h.Version, ErrUnsupportedFormat)
	}
	h.Compression = CompressionType(data[6])
	if _, err := GetCodec(h.Compression); err != nil {
		return err
	}
	h.RawSize = binary.LittleEndian.Uint64(data[8:16])
	h.StoredSize = binary.LittleEndian.Uint64(data[16:24])
	h.Checksum = binary.LittleEndian.Uint64(data[24:32])
	if h.RawSize > maxPayloadSize {
		return fmt.Errorf("%d bytes, %w", h.RawSize, ErrPayloadTooLarge)
	}
	return nil
}
