package regression

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormulaPlaces is the number of decimal digits coefficients are shown with
const FormulaPlaces = 3

// Formula renders target = c0 + c1*input1 + ... with every coefficient rounded half away from
// zero to FormulaPlaces digits. Negative terms are written with a minus sign instead of "+ -".
func Formula(target string, inputs []string, intercept float64, coef []float64) string {
	var sb strings.Builder
	sb.WriteString(target)
	sb.WriteString(" = ")
	sb.WriteString(round(intercept).StringFixed(FormulaPlaces))
	for i, name := range inputs {
		var c float64
		if i < len(coef) {
			c = coef[i]
		}
		d := round(c)
		if d.IsNegative() {
			sb.WriteString(" - ")
			d = d.Abs()
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(d.StringFixed(FormulaPlaces))
		sb.WriteString("*")
		sb.WriteString(name)
	}
	return sb.String()
}

func round(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(FormulaPlaces)
}
