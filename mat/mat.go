// Package mat builds gonum design matrices from the slices the pipeline works with
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmpty          = errors.New("matrix has no rows or no columns")
	ErrRowMismatch    = errors.New("row size mismatch")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
)

// NewDenseFromColumns builds a matrix whose j-th column is cols[j]
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	n := len(cols)
	if n == 0 || len(cols[0]) == 0 {
		return nil, ErrEmpty
	}
	m := len(cols[0])
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows, expected %d, %w", j, len(col), m, ErrRowMismatch)
		}
	}

	mx := mat.NewDense(m, n, nil)
	for j, col := range cols {
		mx.SetCol(j, col)
	}
	return mx, nil
}

// SelectRows copies the given rows of x, in the given order, into a new matrix
func SelectRows(x mat.Matrix, rows []int) (*mat.Dense, error) {
	m, n := x.Dims()
	if len(rows) == 0 || n == 0 {
		return nil, ErrEmpty
	}
	out := mat.NewDense(len(rows), n, nil)
	buf := make([]float64, n)
	for i, r := range rows {
		if r < 0 || r >= m {
			return nil, fmt.Errorf("row %d of %d, %w", r, m, ErrRowOutOfBounds)
		}
		mat.Row(buf, r, x)
		out.SetRow(i, buf)
	}
	return out, nil
}
