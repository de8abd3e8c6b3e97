// Package regression fits ordinary least squares on a column selection of a table, scores the fit
// on a training and a held out partition, and applies fitted bundles to new feature vectors
package regression

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/selection"
	"github.com/aouyang1/go-tabreg/table"
)

var (
	ErrNilBundle        = errors.New("nil bundle")
	ErrCoefLenMismatch  = errors.New("number of coefficients does not match number of inputs")
	ErrNoTableSnapshot  = errors.New("bundle has no table snapshot")
	ErrNonFiniteWeights = errors.New("bundle has a non-finite coefficient or intercept")
)

// Bundle is a fitted model together with everything needed to audit it: the selection it was fit
// on, a copy of the table at fit time, the rendered formula, the scores and a free text
// description
type Bundle struct {
	ID           string              `json:"id"`
	Selection    selection.Selection `json:"selection"`
	Intercept    float64             `json:"intercept"`
	Coefficients []float64           `json:"coefficients"`
	Table        *table.Table        `json:"table"`
	Formula      string              `json:"formula"`
	Metrics      Metrics             `json:"metrics"`
	Description  string              `json:"description"`
	Options      Options             `json:"options"`
}

// Validate checks the structural invariants of a bundle, typically one that was just decoded
func (b *Bundle) Validate() error {
	if b == nil {
		return ErrNilBundle
	}
	if len(b.Selection.Inputs) == 0 || b.Selection.Target == "" {
		return fmt.Errorf("bundle selection, %w", errkind.ErrEmptySelection)
	}
	if len(b.Coefficients) != len(b.Selection.Inputs) {
		return fmt.Errorf("%d coefficients for %d inputs, %w", len(b.Coefficients), len(b.Selection.Inputs), ErrCoefLenMismatch)
	}
	if !finite(b.Intercept) {
		return ErrNonFiniteWeights
	}
	for _, c := range b.Coefficients {
		if !finite(c) {
			return ErrNonFiniteWeights
		}
	}
	if b.Table == nil {
		return ErrNoTableSnapshot
	}
	if err := b.Table.Validate(); err != nil {
		return fmt.Errorf("table snapshot, %w", err)
	}
	return b.Selection.Check(b.Table)
}

// Inputs returns the input column names in coefficient order
func (b *Bundle) Inputs() []string {
	return b.Selection.Inputs
}

// Target returns the name of the predicted column
func (b *Bundle) Target() string {
	return b.Selection.Target
}

// Report returns the metrics report text
func (b *Bundle) Report() string {
	return b.Metrics.Report()
}
