package regression

import (
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/floatsunrolled"
	"github.com/aouyang1/go-tabreg/table"
)

// Predict parses one value per bundle input, in input order, and applies the fitted affine
// function. The arity is checked before any value is parsed.
func Predict(b *Bundle, values []string) (float64, error) {
	if b == nil {
		return 0, ErrNilBundle
	}
	if len(values) != len(b.Selection.Inputs) {
		return 0, fmt.Errorf("got %d values for %d inputs, %w", len(values), len(b.Selection.Inputs), errkind.ErrArityMismatch)
	}

	x := make([]float64, len(values))
	for i, raw := range values {
		f, ok := table.ParseNumber(raw)
		if !ok {
			return 0, fmt.Errorf("value %q for input %q, %w", raw, b.Selection.Inputs[i], errkind.ErrNonNumericInput)
		}
		x[i] = f
	}
	return PredictFloats(b, x)
}

// PredictFloats applies the fitted affine function to already parsed features
func PredictFloats(b *Bundle, x []float64) (float64, error) {
	if b == nil {
		return 0, ErrNilBundle
	}
	if len(x) != len(b.Coefficients) {
		return 0, fmt.Errorf("got %d values for %d inputs, %w", len(x), len(b.Coefficients), errkind.ErrArityMismatch)
	}
	dot, err := floatsunrolled.Dot(b.Coefficients, x)
	if err != nil {
		return 0, err
	}
	return b.Intercept + dot, nil
}
