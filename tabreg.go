// Package tabreg is a data ingestion and linear regression pipeline. A tabular file is loaded into
// a table, missing cells in the columns of interest are resolved, an input and target selection
// is validated, and an ordinary least squares model is fit, scored, saved, restored and used for
// predictions.
//
// The functions in this file are stateless. Session holds the table, selection and bundle of one
// modeling session for a presentation layer.
package tabreg

import (
	"io"

	"github.com/aouyang1/go-tabreg/archive"
	"github.com/aouyang1/go-tabreg/missing"
	"github.com/aouyang1/go-tabreg/regression"
	"github.com/aouyang1/go-tabreg/selection"
	"github.com/aouyang1/go-tabreg/source"
	"github.com/aouyang1/go-tabreg/table"
)

// LoadTable reads a csv, xlsx, xls, sqlite or db file into a table
func LoadTable(path string) (*table.Table, error) {
	return source.Load(path)
}

// DetectMissing returns the missing cells of the given columns
func DetectMissing(t *table.Table, columns []string) ([]missing.Coord, error) {
	return missing.Detect(t, columns)
}

// ApplyMissingPolicy resolves the missing cells of the given columns in place. The constant is
// only used by missing.FillConstant.
func ApplyMissingPolicy(t *table.Table, columns []string, strategy missing.Strategy, constant string) (missing.Result, error) {
	return missing.Apply(t, columns, strategy, constant)
}

// ValidateSelection checks an input and target choice against the table schema
func ValidateSelection(t *table.Table, inputs []string, target string) (selection.Selection, error) {
	return selection.Validate(t, inputs, target)
}

// Fit trains and scores a model with the default split
func Fit(t *table.Table, sel selection.Selection) (*regression.Bundle, error) {
	return regression.Fit(t, sel, nil)
}

// Predict applies a bundle to one value per input column
func Predict(b *regression.Bundle, values []string) (float64, error) {
	return regression.Predict(b, values)
}

// PlotSeries returns the scatter data of a single input bundle; ok is false for any other bundle
func PlotSeries(b *regression.Bundle) (regression.Series, bool) {
	return regression.PlotSeries(b)
}

// PlotFit renders the plot of a single input bundle as html
func PlotFit(w io.Writer, b *regression.Bundle) error {
	s, ok := regression.PlotSeries(b)
	if !ok {
		return ErrPlotUnavailable
	}
	return regression.PlotFit(w, b, s)
}

// SaveBundle writes a bundle to path, replacing any existing file
func SaveBundle(b *regression.Bundle, path string) error {
	return archive.Save(b, path)
}

// LoadBundle restores a bundle saved with SaveBundle without refitting it
func LoadBundle(path string) (*regression.Bundle, error) {
	return archive.Load(path)
}
