// Package floatsunrolled holds loop unrolled float64 kernels used when scoring and applying a
// fitted model. Slices of any length are accepted, the remainder after the last full batch is
// handled one element at a time.
package floatsunrolled

import "errors"

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch       = errors.New("slices must have equal lengths")
	ErrOutputSliceLengthMismatch = errors.New("output slice length not the same as input")
)

// Dot returns the inner product of a and b
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrSliceLengthMismatch
	}

	var sum float64
	n := len(a) - len(a)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	for i := n; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// SubTo stores s - t element wise in dst. A nil dst is allocated.
func SubTo(dst, s, t []float64) ([]float64, error) {
	if len(s) != len(t) {
		return nil, ErrSliceLengthMismatch
	}
	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		return nil, ErrOutputSliceLengthMismatch
	}

	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - tTmp[0]
		dstTmp[1] = sTmp[1] - tTmp[1]
		dstTmp[2] = sTmp[2] - tTmp[2]
		dstTmp[3] = sTmp[3] - tTmp[3]
	}
	for i := n; i < len(s); i++ {
		dst[i] = s[i] - t[i]
	}
	return dst, nil
}

// SumAbs returns the sum of the absolute values of s
func SumAbs(s []float64) float64 {
	var sum float64
	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		sum += abs(sTmp[0]) + abs(sTmp[1]) + abs(sTmp[2]) + abs(sTmp[3])
	}
	for i := n; i < len(s); i++ {
		sum += abs(s[i])
	}
	return sum
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
