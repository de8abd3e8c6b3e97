// Package source loads a tabular file into a table.Table, picking the reader from the file
// extension. Recognized extensions are .csv, .xlsx, .xls, .sqlite and .db; anything else is
// rejected before the file is opened.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/table"
	"go.uber.org/zap"
)

// Format is the family of file a path is read as
type Format uint8

const (
	FormatUnknown Format = iota
	FormatDelimited
	FormatSpreadsheet
	FormatLegacySpreadsheet
	FormatRelational
)

func (f Format) String() string {
	switch f {
	case FormatDelimited:
		return "delimited"
	case FormatSpreadsheet:
		return "spreadsheet"
	case FormatLegacySpreadsheet:
		return "legacy-spreadsheet"
	case FormatRelational:
		return "relational"
	default:
		return "unknown"
	}
}

// DetectFormat maps the file extension, case insensitively, to a Format
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatDelimited, nil
	case ".xlsx":
		return FormatSpreadsheet, nil
	case ".xls":
		return FormatLegacySpreadsheet, nil
	case ".sqlite", ".db":
		return FormatRelational, nil
	default:
		return FormatUnknown, fmt.Errorf("extension %q, %w", ext, errkind.ErrUnsupportedFormat)
	}
}

// Loader reads tabular files. The zero value is not usable, create one with NewLoader.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader logging to the given logger. A nil logger discards output.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads path into a table. The source file is opened read only and never modified.
func (l *Loader) Load(path string) (*table.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s, %w", path, errkind.ErrFileNotFound)
		}
		return nil, fmt.Errorf("unable to stat %s, %v, %w", path, err, errkind.ErrUnreadableFile)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, %w", path, errkind.ErrUnreadableFile)
	}

	var t *table.Table
	switch format {
	case FormatDelimited:
		t, err = readCSV(path)
	case FormatSpreadsheet:
		t, err = readXLSX(path)
	case FormatLegacySpreadsheet:
		t, err = readXLS(path)
	case FormatRelational:
		t, err = readSQLite(path, l.logger)
	}
	if err != nil {
		l.logger.Warn("unable to load table", zap.String("path", path), zap.Stringer("format", format), zap.Error(err))
		return nil, err
	}

	l.logger.Info("loaded table",
		zap.String("path", path),
		zap.Stringer("format", format),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()),
	)
	return t, nil
}

// Load reads path with a loader that does not log
func Load(path string) (*table.Table, error) {
	return NewLoader(nil).Load(path)
}
