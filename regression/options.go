package regression

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-tabreg/errkind"
)

const (
	DefaultTestFraction = 0.3
	DefaultSeed         = 42
)

var ErrInvalidTestFraction = errors.New("test fraction must be strictly between 0 and 1")

// Options controls how rows are partitioned between training and evaluation
type Options struct {
	TestFraction float64 `json:"test_fraction"`
	Seed         uint64  `json:"seed"`
}

func NewDefaultOptions() *Options {
	return &Options{
		TestFraction: DefaultTestFraction,
		Seed:         DefaultSeed,
	}
}

// Validate returns the default options for a nil receiver
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		return nil, fmt.Errorf("got %f, %w, %w", o.TestFraction, ErrInvalidTestFraction, errkind.ErrInvalidOptions)
	}
	return o, nil
}
