package table

import (
	"bytes"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	testData := map[string]struct {
		raw      string
		expected Value
	}{
		"empty":        {"", NullValue()},
		"na":           {"NA", NullValue()},
		"lower nan":    {"nan", NullValue()},
		"padded null":  {" null ", NullValue()},
		"integer":      {"42", NumberValue(42)},
		"real":         {"-3.25", NumberValue(-3.25)},
		"exponent":     {"1e3", NumberValue(1000)},
		"padded":       {" 7 ", NumberValue(7)},
		"text":         {"Madrid", TextValue("Madrid")},
		"inf is text":  {"Inf", TextValue("Inf")},
		"mixed digits": {"12abc", TextValue("12abc")},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, ParseCell(td.raw))
		})
	}
}

func TestInferType(t *testing.T) {
	testData := map[string]struct {
		values   []Value
		expected ColumnType
	}{
		"integers":      {[]Value{NumberValue(1), NullValue(), NumberValue(3)}, TypeInteger},
		"reals":         {[]Value{NumberValue(1.5), NumberValue(3)}, TypeReal},
		"text":          {[]Value{TextValue("a"), NullValue()}, TypeText},
		"mixed":         {[]Value{TextValue("a"), NumberValue(1)}, TypeMixed},
		"all null":      {[]Value{NullValue(), NullValue()}, TypeMixed},
		"empty":         {nil, TypeMixed},
		"huge integral": {[]Value{NumberValue(1e300)}, TypeReal},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, InferType(td.values))
		})
	}
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		names    []string
		rows     [][]Value
		expected *Table
		err      error
	}{
		"no columns": {
			err: ErrNoColumns,
		},
		"ragged": {
			names: []string{"a", "b"},
			rows:  [][]Value{{NumberValue(1)}},
			err:   ErrRowLenMismatch,
		},
		"duplicate": {
			names: []string{"a", "a"},
			rows:  [][]Value{{NumberValue(1), NumberValue(2)}},
			err:   ErrDuplicateColumn,
		},
		"valid": {
			names: []string{"name", "age"},
			rows: [][]Value{
				{TextValue("Alice"), NumberValue(25)},
				{TextValue("Bob"), NullValue()},
			},
			expected: &Table{
				Columns: []Column{
					{Name: "name", Type: TypeText, Values: []Value{TextValue("Alice"), TextValue("Bob")}},
					{Name: "age", Type: TypeInteger, Values: []Value{NumberValue(25), NullValue()}},
				},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tbl, err := New(td.names, td.rows)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			if diff := cmp.Diff(td.expected, tbl); diff != "" {
				t.Errorf("table mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	tbl, err := New(
		[]string{"x", "y"},
		[][]Value{
			{NumberValue(1), NumberValue(10)},
			{NumberValue(2), NumberValue(20)},
			{NumberValue(3), NumberValue(30)},
		},
	)
	require.Nil(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, []string{"x", "y"}, tbl.Names())
	assert.Equal(t, 1, tbl.Index("y"))
	assert.Equal(t, -1, tbl.Index("z"))

	v, err := tbl.Cell(2, "y")
	require.Nil(t, err)
	assert.Equal(t, NumberValue(30), v)

	_, err = tbl.Cell(3, "y")
	assert.ErrorIs(t, err, ErrRowOutOfBounds)
	_, err = tbl.Column("z")
	assert.ErrorIs(t, err, ErrColumnDoesNotExist)

	cp := tbl.Copy()
	tbl.DropRows(map[int]struct{}{0: {}, 2: {}})
	assert.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, []float64{2}, tbl.Columns[0].Float64s())
	assert.Equal(t, 3, cp.NumRows(), "copy must not share storage")
	assert.Equal(t, []float64{1, 2, 3}, cp.Columns[0].Float64s())
}

func TestSummaryAndHead(t *testing.T) {
	tbl, err := New(
		[]string{"city", "temp"},
		[][]Value{
			{TextValue("Madrid"), NumberValue(21.5)},
			{TextValue("Sevilla"), NullValue()},
		},
	)
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, tbl.Summary(&buf))
	out := buf.String()
	assert.Contains(t, out, "Rows: 2    Columns: 2")
	assert.Contains(t, out, "temp")
	assert.Contains(t, out, "real")

	buf.Reset()
	require.Nil(t, tbl.Head(&buf, 10))
	out = buf.String()
	assert.Contains(t, out, "Madrid")
	assert.Contains(t, out, "NaN")
}

func TestColumnTypeText(t *testing.T) {
	for _, ct := range []ColumnType{TypeMixed, TypeReal, TypeInteger, TypeText} {
		b, err := ct.MarshalText()
		require.Nil(t, err)
		var got ColumnType
		require.Nil(t, got.UnmarshalText(b))
		assert.Equal(t, ct, got)
	}
	var ct ColumnType
	assert.ErrorIs(t, ct.UnmarshalText([]byte("complex")), ErrUnknownColumnType)
}

func TestValueJSON(t *testing.T) {
	testData := map[string]struct {
		in Value
	}{
		"null":          {NullValue()},
		"number":        {NumberValue(2.5)},
		"negative zero": {NumberValue(math.Copysign(0, -1))},
		"smallest":      {NumberValue(math.SmallestNonzeroFloat64)},
		"text":          {TextValue("ünïcode")},
		"empty text":    {TextValue("")},
		"latin1 text":   {TextValue("Mal\xe1ga")},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal([]Value{td.in})
			require.Nil(t, err)

			var out []Value
			require.Nil(t, json.Unmarshal(b, &out))
			require.Len(t, out, 1)
			assert.Equal(t, td.in.Kind, out[0].Kind)
			assert.Equal(t, td.in.Str, out[0].Str)
			assert.Equal(t, math.Float64bits(td.in.Num), math.Float64bits(out[0].Num))
		})
	}
}

func TestValueJSONInvalid(t *testing.T) {
	testData := map[string]string{
		"bad number": `{"k":1,"n":"one"}`,
		"bad kind":   `{"k":7}`,
	}

	for name, in := range testData {
		t.Run(name, func(t *testing.T) {
			var v Value
			assert.ErrorContains(t, json.Unmarshal([]byte(in), &v), ErrInvalidValue.Error())
		})
	}
}
