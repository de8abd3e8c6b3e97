package models

import (
	"testing"

	mat_ "github.com/aouyang1/go-tabreg/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol)

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol)

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol)
}

func denseFromRows(rows [][]float64) *mat.Dense {
	data := make([]float64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), len(rows[0]), data)
}

func generateBenchData(nObs, nFeat int) (mat.Matrix, mat.Matrix, error) {
	cols := make([][]float64, nFeat)
	for j := range cols {
		cols[j] = make([]float64, nObs)
		for i := 0; i < nObs; i++ {
			cols[j][i] = float64((i*nFeat+j)%97) + float64(j)
		}
	}

	y := make([]float64, 0, nObs)
	for i := 0; i < cap(y); i++ {
		y = append(y, float64(i))
	}

	x, err := mat_.NewDenseFromColumns(cols)
	if err != nil {
		return nil, nil, err
	}
	return x, mat.NewDense(nObs, 1, y), nil
}
