// Package stats computes summary statistics over columns that may hold absent cells, marked as
// NaN in the float view of a column
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/aouyang1/go-tabreg/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoValues           = errors.New("no non-missing values")
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute collinearity")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
)

// Present returns the values of x that are not NaN, in order
func Present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Mean returns the arithmetic mean of the non-NaN values of x
func Mean(x []float64) (float64, error) {
	vals := Present(x)
	if len(vals) == 0 {
		return 0, ErrNoValues
	}
	return stat.Mean(vals, nil), nil
}

// Median returns the median of the non-NaN values of x. For an even count the two middle values
// are averaged.
func Median(x []float64) (float64, error) {
	vals := Present(x)
	if len(vals) == 0 {
		return 0, ErrNoValues
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], nil
	}
	return (vals[mid-1] + vals[mid]) / 2, nil
}

// Collinearity regresses every feature on all the others and returns the R² of each fit. A value
// close to 1 means the feature is nearly a linear combination of the rest.
func Collinearity(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, ErrFeatureLenMismatch
		}
	}

	labels := make([]string, 0, len(features))
	for label := range features {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	r2 := make(map[string]float64, len(features))
	x := mat.NewDense(m, len(features)-1, nil)
	for _, label := range labels {
		c := 0
		for _, other := range labels {
			if other == label {
				continue
			}
			x.SetCol(c, features[other])
			c++
		}
		y := mat.NewDense(m, 1, features[label])

		model, err := models.NewOLSRegression(nil)
		if err != nil {
			return nil, err
		}
		if err := model.Fit(x, y); err != nil {
			return nil, err
		}
		score, err := model.Score(x, y)
		if err != nil {
			return nil, err
		}
		r2[label] = score
	}
	return r2, nil
}

// Constant reports whether every value of x is equal
func Constant(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	return floats.Max(x) == floats.Min(x)
}
