package archive

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/regression"
	"github.com/aouyang1/go-tabreg/selection"
	"github.com/aouyang1/go-tabreg/table"
	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fittedBundle(t *testing.T) *regression.Bundle {
	t.Helper()
	tbl, err := table.New(
		[]string{"feature1", "feature2", "label", "target"},
		[][]table.Value{
			{table.NumberValue(1), table.NumberValue(2), table.TextValue("a"), table.NumberValue(1.1)},
			{table.NumberValue(2), table.NumberValue(4), table.TextValue(""), table.NumberValue(2.0)},
			{table.NumberValue(3), table.NumberValue(6), table.NullValue(), table.NumberValue(2.9)},
			{table.NumberValue(4), table.NumberValue(8), table.TextValue("d"), table.NumberValue(4.1)},
			{table.NumberValue(5), table.NumberValue(10), table.TextValue("e"), table.NumberValue(5.0)},
		},
	)
	require.Nil(t, err)

	sel, err := selection.Validate(tbl, []string{"feature1", "feature2"}, "target")
	require.Nil(t, err)

	b, err := regression.Fit(tbl, sel, nil)
	require.Nil(t, err)
	b.Description = "quarterly sales model, ünïcode ok"
	return b
}

func TestCompressionType(t *testing.T) {
	testData := map[string]struct {
		in       string
		expected CompressionType
		err      error
	}{
		"none":    {"none", CompressionNone, nil},
		"empty":   {"", CompressionNone, nil},
		"zstd":    {"ZSTD", CompressionZstd, nil},
		"s2":      {" s2 ", CompressionS2, nil},
		"lz4":     {"lz4", CompressionLZ4, nil},
		"unknown": {"brotli", 0, ErrUnknownCompression},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ct, err := ParseCompression(td.in)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, ct)

			text, err := ct.MarshalText()
			require.Nil(t, err)
			var back CompressionType
			require.Nil(t, back.UnmarshalText(text))
			assert.Equal(t, ct, back)
		})
	}

	_, err := CompressionType(9).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestCodecs(t *testing.T) {
	inputs := map[string][]byte{
		"empty":          {},
		"short":          []byte("abc"),
		"repetitive":     bytes.Repeat([]byte("feature1,feature2,target\n"), 200),
		"incompressible": {0x8f, 0x01, 0x77, 0xfe, 0x10, 0x42, 0x9a, 0x33},
	}

	for _, ct := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.Nil(t, err)
		for name, in := range inputs {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				stored, err := codec.Compress(in)
				require.Nil(t, err)

				out, err := codec.Decompress(stored, len(in))
				require.Nil(t, err)
				assert.Equal(t, len(in), len(out))
				if len(in) > 0 {
					assert.Equal(t, in, out)
				}
			})
		}
	}

	_, err := GetCodec(CompressionType(0))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ct := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			b := fittedBundle(t)
			path := filepath.Join(t.TempDir(), "model.trm")

			a, err := New(&Options{Compression: ct}, zaptest.NewLogger(t))
			require.Nil(t, err)
			require.Nil(t, a.Save(b, path))

			// any archiver reads any codec
			loaded, err := Load(path)
			require.Nil(t, err)

			if diff := cmp.Diff(b, loaded); diff != "" {
				t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
			}
			assert.Equal(t, b.Formula, loaded.Formula)
			assert.Equal(t, b.Metrics, loaded.Metrics)
			assert.Equal(t, b.Description, loaded.Description)
			assert.Equal(t, b.Coefficients, loaded.Coefficients)
			assert.Equal(t, b.Intercept, loaded.Intercept)
		})
	}
}

func TestSaveLoadPreservesCells(t *testing.T) {
	tbl, err := table.New(
		[]string{"city", "x", "y"},
		[][]table.Value{
			{table.TextValue("Mal\xe1ga"), table.NumberValue(math.Copysign(0, -1)), table.NumberValue(1)},
			{table.TextValue("Oslo"), table.NumberValue(1), table.NumberValue(3)},
			{table.TextValue(""), table.NumberValue(2), table.NumberValue(5)},
			{table.NullValue(), table.NumberValue(3), table.NumberValue(7)},
		},
	)
	require.Nil(t, err)
	sel, err := selection.Validate(tbl, []string{"x"}, "y")
	require.Nil(t, err)
	b, err := regression.Fit(tbl, sel, nil)
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "model.trm")
	require.Nil(t, Save(b, path))
	loaded, err := Load(path)
	require.Nil(t, err)

	for row := 0; row < tbl.NumRows(); row++ {
		for _, name := range tbl.Names() {
			saved, err := b.Table.Cell(row, name)
			require.Nil(t, err)
			got, err := loaded.Table.Cell(row, name)
			require.Nil(t, err)
			assert.Equal(t, saved.Kind, got.Kind, "row %d column %s", row, name)
			assert.Equal(t, saved.Str, got.Str, "row %d column %s", row, name)
			assert.Equal(t, math.Float64bits(saved.Num), math.Float64bits(got.Num), "row %d column %s", row, name)
		}
	}
}

func TestSaveLoadLargeMagnitude(t *testing.T) {
	x := make([]table.Value, 10)
	y := make([]table.Value, 10)
	for i := range x {
		x[i] = table.NumberValue(float64(i))
		y[i] = table.NumberValue(float64(i%3) * 1e200)
	}
	tbl, err := table.FromColumns([]table.Column{table.NewColumn("x", x), table.NewColumn("y", y)})
	require.Nil(t, err)
	b, err := regression.Fit(tbl, selection.Selection{Inputs: []string{"x"}, Target: "y"}, nil)
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "model.trm")
	require.Nil(t, Save(b, path))
	loaded, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, b.Metrics, loaded.Metrics)
}

func TestLoadDoesNotRefit(t *testing.T) {
	b := fittedBundle(t)
	b.Coefficients = []float64{123.456, -7}
	b.Formula = "target = 0.000 + 123.456*feature1 - 7.000*feature2"
	b.Metrics.Test.MAE = 99

	path := filepath.Join(t.TempDir(), "model.trm")
	require.Nil(t, Save(b, path))

	loaded, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, []float64{123.456, -7}, loaded.Coefficients)
	assert.Equal(t, b.Formula, loaded.Formula)
	assert.Equal(t, 99.0, loaded.Metrics.Test.MAE)
}

func TestSaveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.trm")
	require.Nil(t, os.WriteFile(path, []byte("previous contents that are not an archive"), 0o644))

	b := fittedBundle(t)
	require.Nil(t, Save(b, path))

	loaded, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, b.ID, loaded.ID)

	entries, err := os.ReadDir(dir)
	require.Nil(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSaveErrors(t *testing.T) {
	dir := t.TempDir()
	testData := map[string]struct {
		bundle func(t *testing.T) *regression.Bundle
		path   string
	}{
		"missing directory": {
			bundle: fittedBundle,
			path:   filepath.Join(dir, "nope", "model.trm"),
		},
		"path is a directory": {
			bundle: fittedBundle,
			path:   dir,
		},
		"nil bundle": {
			bundle: func(t *testing.T) *regression.Bundle { return nil },
			path:   filepath.Join(dir, "nil.trm"),
		},
		"inconsistent bundle": {
			bundle: func(t *testing.T) *regression.Bundle {
				b := fittedBundle(t)
				b.Coefficients = b.Coefficients[:1]
				return b
			},
			path: filepath.Join(dir, "bad.trm"),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := Save(td.bundle(t), td.path)
			assert.Equal(t, errkind.WriteError, errkind.Of(err))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	valid, err := Marshal(fittedBundle(t), CompressionZstd)
	require.Nil(t, err)

	flipped := append([]byte(nil), valid...)
	flipped[len(flipped)-1] ^= 0xff

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "XXXX")

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 9

	badCodec := append([]byte(nil), valid...)
	badCodec[6] = 0x7f

	testData := map[string]struct {
		content []byte
		err     error
	}{
		"empty":       {nil, ErrInvalidHeaderSize},
		"garbage":     {[]byte("this is clearly not a model archive at all"), ErrInvalidMagic},
		"truncated":   {valid[:len(valid)-5], ErrSizeMismatch},
		"header only": {valid[:HeaderSize], ErrSizeMismatch},
		"flipped bit": {flipped, ErrChecksumMismatch},
		"bad magic":   {badMagic, ErrInvalidMagic},
		"bad version": {badVersion, ErrUnsupportedFormat},
		"bad codec":   {badCodec, ErrUnknownCompression},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.trm")
			require.Nil(t, os.WriteFile(path, td.content, 0o644))

			b, err := Load(path)
			assert.Nil(t, b)
			assert.Equal(t, errkind.ReadError, errkind.Of(err))
			assert.ErrorIs(t, err, td.err)
		})
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.trm"))
	assert.Equal(t, errkind.ReadError, errkind.Of(err))
}

func TestUnmarshalInvalidPayload(t *testing.T) {
	payloads := map[string]string{
		"not json":         "{nope",
		"coef mismatch":    `{"selection":{"inputs":["a"],"target":"y"},"coefficients":[1,2],"table":{"columns":[{"name":"a","type":"real","values":[{"k":1,"n":"1"}]},{"name":"y","type":"real","values":[{"k":1,"n":"2"}]}]}}`,
		"no table":         `{"selection":{"inputs":["a"],"target":"y"},"coefficients":[1]}`,
		"bad cell number":  `{"selection":{"inputs":["a"],"target":"y"},"coefficients":[1],"table":{"columns":[{"name":"a","type":"real","values":[{"k":1,"n":"one"}]},{"name":"y","type":"real","values":[{"k":1,"n":"2"}]}]}}`,
		"unknown col type": `{"selection":{"inputs":["a"],"target":"y"},"coefficients":[1],"table":{"columns":[{"name":"a","type":"complex","values":[]}]}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			raw := []byte(payload)
			h := header{
				Version:     formatVersion,
				Compression: CompressionNone,
				RawSize:     uint64(len(raw)),
				StoredSize:  uint64(len(raw)),
				Checksum:    xxhash.Sum64(raw),
			}
			_, err := Unmarshal(append(h.Bytes(), raw...))
			assert.NotNil(t, err)
		})
	}
}

func TestNewInvalidOptions(t *testing.T) {
	a, err := New(&Options{Compression: CompressionType(9)}, nil)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Equal(t, errkind.InvalidOptions, errkind.Of(err))
}
