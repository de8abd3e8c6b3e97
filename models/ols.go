package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		return NewDefaultOLSOptions(), nil
	}
	return o, nil
}

// OLSRegression computes ordinary least squares through the singular value decomposition of the
// design matrix. Singular values below the numerical rank tolerance are dropped so collinear or
// duplicated features yield the minimum norm solution instead of failing.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	fitted    bool
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()
	if m == 0 || n == 0 {
		return ErrNoObservations
	}

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	yv := mat.Col(nil, 0, y)
	xc := mat.DenseCopyOf(x)

	// center features and target so the intercept falls out of the means
	xMeans := make([]float64, n)
	var yMean float64
	if o.opt.FitIntercept {
		col := make([]float64, m)
		for j := 0; j < n; j++ {
			mat.Col(col, j, xc)
			xMeans[j] = stat.Mean(col, nil)
			floats.AddConst(-xMeans[j], col)
			xc.SetCol(j, col)
		}
		yMean = stat.Mean(yv, nil)
		floats.AddConst(-yMean, yv)
	}

	coef, err := minNormSolve(xc, yv)
	if err != nil {
		return err
	}

	o.coef = coef
	o.intercept = 0
	if o.opt.FitIntercept {
		o.intercept = yMean - floats.Dot(xMeans, coef)
	}
	o.fitted = true
	return nil
}

// minNormSolve returns argmin ||b|| over the minimizers of ||a*b - y||
func minNormSolve(a *mat.Dense, y []float64) ([]float64, error) {
	m, n := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrNoConvergence
	}
	s := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	coef := make([]float64, n)
	if len(s) == 0 || s[0] == 0 {
		return coef, nil
	}
	tol := s[0] * float64(max(m, n)) * machineEpsilon

	uty := mat.NewVecDense(len(s), nil)
	uty.MulVec(u.T(), mat.NewVecDense(m, y))
	for i, sv := range s {
		if sv <= tol {
			uty.SetVec(i, 0)
			continue
		}
		uty.SetVec(i, uty.AtVec(i)/sv)
	}

	b := mat.NewVecDense(n, coef)
	b.MulVec(&v, uty)
	return coef, nil
}

const machineEpsilon = 0x1p-52

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if !o.fitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	res := make([]float64, m)
	resVec := mat.NewVecDense(m, res)
	resVec.MulVec(x, mat.NewVecDense(n, o.Coef()))
	floats.AddConst(o.intercept, res)
	return res, nil
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	return RSquared(res, ySlice), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// RSquared is the coefficient of determination of estimate against actual. When actual has no
// variance the score is 1 for an exact fit and 0 otherwise so the result is always finite.
func RSquared(estimate, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := stat.Mean(actual, nil)
	res := make([]float64, len(actual))
	dev := make([]float64, len(actual))
	for i, a := range actual {
		res[i] = a - estimate[i]
		dev[i] = a - mean
	}

	// norms are scaled internally so large residuals do not overflow the sums of squares
	normRes := floats.Norm(res, 2)
	normTot := floats.Norm(dev, 2)
	if normTot == 0 {
		if normRes == 0 {
			return 1
		}
		return 0
	}
	ratio := normRes / normTot
	r2 := 1 - ratio*ratio
	if math.IsNaN(r2) {
		return 0
	}
	return r2
}
