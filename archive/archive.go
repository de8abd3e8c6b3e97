// Package archive stores a fitted regression bundle in a single self-describing file and restores
// it without refitting. The file is a fixed header followed by the json encoded bundle,
// compressed with the codec named in the header and guarded by an xxhash64 checksum.
package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/regression"
	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configures how archives are written. Reading always follows the codec recorded in the
// file.
type Options struct {
	Compression CompressionType
}

func NewDefaultOptions() *Options {
	return &Options{
		Compression: CompressionZstd,
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if _, err := GetCodec(o.Compression); err != nil {
		return nil, fmt.Errorf("%w, %w", err, errkind.ErrInvalidOptions)
	}
	return o, nil
}

// Archiver saves and loads bundles
type Archiver struct {
	opt    *Options
	logger *zap.Logger
}

// New creates an archiver. A nil opt uses NewDefaultOptions and a nil logger discards output.
func New(opt *Options, logger *zap.Logger) (*Archiver, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{opt: opt, logger: logger}, nil
}

// Marshal encodes a bundle into the archive container format
func Marshal(b *regression.Bundle, ct CompressionType) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle, %v", err)
	}
	codec, err := GetCodec(ct)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("unable to encode bundle, %w", err)
	}
	stored, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to compress bundle with %s, %w", ct, err)
	}

	h := header{
		Version:     formatVersion,
		Compression: ct,
		RawSize:     uint64(len(raw)),
		StoredSize:  uint64(len(stored)),
		Checksum:    xxhash.Sum64(stored),
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(stored))
	buf.Write(h.Bytes())
	buf.Write(stored)
	return buf.Bytes(), nil
}

// Unmarshal decodes an archive container. The payload must pass its checksum and decode into a
// structurally valid bundle.
func Unmarshal(data []byte) (*regression.Bundle, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("got %d bytes, %w", len(data), ErrInvalidHeaderSize)
	}
	var h header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return nil, err
	}

	stored := data[HeaderSize:]
	if uint64(len(stored)) != h.StoredSize {
		return nil, fmt.Errorf("stored %d bytes, header records %d, %w", len(stored), h.StoredSize, ErrSizeMismatch)
	}
	if sum := xxhash.Sum64(stored); sum != h.Checksum {
		return nil, fmt.Errorf("computed %016x, header records %016x, %w", sum, h.Checksum, ErrChecksumMismatch)
	}

	codec, err := GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(stored, int(h.RawSize))
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != h.RawSize {
		return nil, fmt.Errorf("decompressed %d bytes, header records %d, %w", len(raw), h.RawSize, ErrSizeMismatch)
	}

	var b regression.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("unable to decode bundle, %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle, %v", err)
	}
	return &b, nil
}

// Save writes the bundle to path. The file is written to a temporary file in the same directory
// and renamed over path, so an existing archive is either fully replaced or left untouched.
func (a *Archiver) Save(b *regression.Bundle, path string) error {
	data, err := Marshal(b, a.opt.Compression)
	if err != nil {
		return fmt.Errorf("%v, %w", err, errkind.ErrWriteError)
	}
	if err := writeAtomic(path, data); err != nil {
		a.logger.Warn("unable to save model archive", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w, %w", err, errkind.ErrWriteError)
	}
	a.logger.Info("saved model archive",
		zap.String("path", path),
		zap.String("id", b.ID),
		zap.Stringer("compression", a.opt.Compression),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load restores the bundle stored at path exactly as it was saved
func (a *Archiver) Load(path string) (*regression.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %v, %w", path, err, errkind.ErrReadError)
	}
	b, err := Unmarshal(data)
	if err != nil {
		a.logger.Warn("unable to load model archive", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s, %w, %w", path, err, errkind.ErrReadError)
	}
	a.logger.Info("loaded model archive",
		zap.String("path", path),
		zap.String("id", b.ID),
		zap.Int("bytes", len(data)),
	)
	return b, nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Chmod(0o644); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Sync(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save writes b to path with the default options
func Save(b *regression.Bundle, path string) error {
	a, err := New(nil, nil)
	if err != nil {
		return err
	}
	return a.Save(b, path)
}

// Load reads the bundle stored at path
func Load(path string) (*regression.Bundle, error) {
	a, err := New(nil, nil)
	if err != nil {
		return nil, err
	}
	return a.Load(path)
}
