package table

import (
	"fmt"
	"math"
)

// ColumnType is the scalar type inferred for a column once, when the column is built
type ColumnType uint8

const (
	TypeMixed ColumnType = iota
	TypeReal
	TypeInteger
	TypeText
)

// maxExactInt is the largest magnitude a float64 holds without losing integer precision
const maxExactInt = 1 << 53

func (c ColumnType) String() string {
	switch c {
	case TypeReal:
		return "real"
	case TypeInteger:
		return "integer"
	case TypeText:
		return "text"
	default:
		return "mixed"
	}
}

// IsNumeric reports whether the column holds numbers only
func (c ColumnType) IsNumeric() bool {
	return c == TypeReal || c == TypeInteger
}

func (c ColumnType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ColumnType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "real":
		*c = TypeReal
	case "integer":
		*c = TypeInteger
	case "text":
		*c = TypeText
	case "mixed":
		*c = TypeMixed
	default:
		return fmt.Errorf("unknown column type %q, %w", string(b), ErrUnknownColumnType)
	}
	return nil
}

// InferType classifies a column from its non-absent cells. A column with no present cells or
// with both numbers and text is Mixed.
func InferType(values []Value) ColumnType {
	var numbers, texts int
	integral := true
	for _, v := range values {
		switch v.Kind {
		case Number:
			numbers++
			if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > maxExactInt {
				integral = false
			}
		case Text:
			texts++
		}
	}
	switch {
	case numbers > 0 && texts == 0 && integral:
		return TypeInteger
	case numbers > 0 && texts == 0:
		return TypeReal
	case texts > 0 && numbers == 0:
		return TypeText
	default:
		return TypeMixed
	}
}

// Column is a named, typed vector of cells
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// NewColumn builds a column and infers its type
func NewColumn(name string, values []Value) Column {
	return Column{
		Name:   name,
		Type:   InferType(values),
		Values: values,
	}
}

// Float64s returns the column as floats with absent or text cells set to NaN
func (c *Column) Float64s() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		if v.Kind != Number {
			out[i] = math.NaN()
			continue
		}
		out[i] = v.Num
	}
	return out
}

// Reinfer recomputes the column type after its cells were changed
func (c *Column) Reinfer() {
	c.Type = InferType(c.Values)
}
