package regression

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-tabreg/errkind"
)

// Split partitions the row indexes 0..n-1 into a training and a held out set. The partition
// depends only on n, the test fraction and the seed. Both sets are non-empty, so at least two rows
// are required.
func Split(n int, testFraction float64, seed uint64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 rows to split, got %d, %w", n, errkind.ErrInsufficientRows)
	}

	// the tolerance keeps products such as 0.3*100 from rounding up past the exact count
	nTest := int(math.Ceil(testFraction*float64(n) - 1e-9))
	nTest = min(max(nTest, 1), n-1)

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
