package regression

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-tabreg/errkind"
	mat_ "github.com/aouyang1/go-tabreg/mat"
	"github.com/aouyang1/go-tabreg/missing"
	"github.com/aouyang1/go-tabreg/models"
	"github.com/aouyang1/go-tabreg/selection"
	"github.com/aouyang1/go-tabreg/table"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Fit trains an ordinary least squares model of the selection target on the selection inputs. Rows
// are split into a training and a held out partition with opt, the model is fit on the training
// rows and scored on both. Every selected column must be numeric and free of missing cells. A nil
// opt uses NewDefaultOptions.
func Fit(t *table.Table, sel selection.Selection, opt *Options) (*Bundle, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("no table, %w", errkind.ErrCorruptOrEmpty)
	}
	if len(sel.Inputs) == 0 || sel.Target == "" {
		return nil, fmt.Errorf("fit selection, %w", errkind.ErrEmptySelection)
	}
	if err := sel.Check(t); err != nil {
		return nil, err
	}

	cols := sel.Columns()
	coords, err := missing.Detect(t, cols)
	if err != nil {
		return nil, err
	}
	if len(coords) > 0 {
		return nil, fmt.Errorf("%d missing cells, first in column %q at row %d, %w",
			len(coords), coords[0].Column, coords[0].Row, errkind.ErrMissingValues)
	}
	for _, name := range cols {
		c, err := t.Column(name)
		if err != nil {
			return nil, fmt.Errorf("%v, %w", err, errkind.ErrUnknownColumn)
		}
		if !c.Type.IsNumeric() {
			return nil, fmt.Errorf("column %q is %s, %w", name, c.Type, errkind.ErrNonNumericColumn)
		}
	}

	train, test, err := Split(t.NumRows(), opt.TestFraction, opt.Seed)
	if err != nil {
		return nil, err
	}

	features := make([][]float64, len(sel.Inputs))
	for j, name := range sel.Inputs {
		c, _ := t.Column(name)
		features[j] = c.Float64s()
	}
	x, err := mat_.NewDenseFromColumns(features)
	if err != nil {
		return nil, err
	}
	targetCol, _ := t.Column(sel.Target)
	y := mat.NewDense(t.NumRows(), 1, targetCol.Float64s())

	xTrain, yTrain, err := partition(x, y, train)
	if err != nil {
		return nil, err
	}
	xTest, yTest, err := partition(x, y, test)
	if err != nil {
		return nil, err
	}

	model, err := models.NewOLSRegression(models.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("unable to fit model, %w, %w", err, errkind.ErrFitFailed)
	}

	intercept, coef := model.Intercept(), model.Coef()
	if !finite(intercept) {
		return nil, fmt.Errorf("intercept %v, %w, %w", intercept, ErrNonFiniteWeights, errkind.ErrFitFailed)
	}
	for _, c := range coef {
		if !finite(c) {
			return nil, fmt.Errorf("coefficient %v, %w, %w", c, ErrNonFiniteWeights, errkind.ErrFitFailed)
		}
	}

	trainScores, err := score(model, xTrain, yTrain)
	if err != nil {
		return nil, err
	}
	testScores, err := score(model, xTest, yTest)
	if err != nil {
		return nil, err
	}
	for _, s := range []*Scores{trainScores, testScores} {
		if !s.finite() {
			return nil, fmt.Errorf("scores %+v, %w, %w", *s, ErrNonFiniteScores, errkind.ErrFitFailed)
		}
	}

	inputs := append([]string(nil), sel.Inputs...)
	return &Bundle{
		ID:           uuid.NewString(),
		Selection:    selection.Selection{Inputs: inputs, Target: sel.Target},
		Intercept:    intercept,
		Coefficients: coef,
		Table:        t.Copy(),
		Formula:      Formula(sel.Target, inputs, intercept, coef),
		Metrics: Metrics{
			Training: *trainScores,
			Test:     *testScores,
		},
		Options: *opt,
	}, nil
}

func partition(x, y mat.Matrix, rows []int) (*mat.Dense, *mat.Dense, error) {
	xp, err := mat_.SelectRows(x, rows)
	if err != nil {
		return nil, nil, err
	}
	yp, err := mat_.SelectRows(y, rows)
	if err != nil {
		return nil, nil, err
	}
	return xp, yp, nil
}

func score(model models.Model, x, y mat.Matrix) (*Scores, error) {
	predicted, err := model.Predict(x)
	if err != nil {
		return nil, err
	}
	return NewScores(predicted, mat.Col(nil, 0, y))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
