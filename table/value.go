package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// ValueKind tags the content of a single cell
type ValueKind uint8

const (
	Null ValueKind = iota
	Number
	Text
)

// naTokens mirrors the strings that are read as an absent cell from text backed sources
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// Value is one cell of a table. Numeric cells keep their value in Num, text cells in Str and
// the canonical absent marker is Kind == Null.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

var ErrInvalidValue = errors.New("invalid encoded cell")

// valueJSON is the encoded form of a cell. Numbers are written in their shortest exact decimal
// form so the sign of zero survives, and text that is not valid UTF-8 is written as raw bytes.
type valueJSON struct {
	Kind ValueKind `json:"k"`
	Num  string    `json:"n,omitempty"`
	Str  string    `json:"s,omitempty"`
	Raw  []byte    `json:"r,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	enc := valueJSON{Kind: v.Kind}
	switch v.Kind {
	case Number:
		enc.Num = strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Text:
		if utf8.ValidString(v.Str) {
			enc.Str = v.Str
		} else {
			enc.Raw = []byte(v.Str)
		}
	}
	return json.Marshal(enc)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var enc valueJSON
	if err := json.Unmarshal(b, &enc); err != nil {
		return err
	}
	switch enc.Kind {
	case Null:
		*v = NullValue()
	case Number:
		f, err := strconv.ParseFloat(enc.Num, 64)
		if err != nil {
			return fmt.Errorf("number %q, %w", enc.Num, ErrInvalidValue)
		}
		*v = NumberValue(f)
	case Text:
		if enc.Raw != nil {
			*v = TextValue(string(enc.Raw))
			break
		}
		*v = TextValue(enc.Str)
	default:
		return fmt.Errorf("kind %d, %w", enc.Kind, ErrInvalidValue)
	}
	return nil
}

func NullValue() Value {
	return Value{Kind: Null}
}

func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f}
}

func TextValue(s string) Value {
	return Value{Kind: Text, Str: s}
}

// IsNull reports whether the cell holds the canonical absent marker
func (v Value) IsNull() bool {
	return v.Kind == Null
}

// String renders the cell the way it is shown to a user, absent cells show as NaN
func (v Value) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Text:
		return v.Str
	default:
		return "NaN"
	}
}

// IsNA reports whether a raw text field is one of the recognized absent tokens
func IsNA(raw string) bool {
	_, ok := naTokens[strings.TrimSpace(raw)]
	return ok
}

// ParseNumber parses s as a finite float. NaN and infinities are rejected so a numeric column
// never carries a non-finite value.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseCell converts a raw text field into a cell, recognizing absent tokens and numbers
func ParseCell(raw string) Value {
	if IsNA(raw) {
		return NullValue()
	}
	if f, ok := ParseNumber(raw); ok {
		return NumberValue(f)
	}
	return TextValue(raw)
}
