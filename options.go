package tabreg

import (
	"github.com/aouyang1/go-tabreg/archive"
	"github.com/aouyang1/go-tabreg/config"
	"github.com/aouyang1/go-tabreg/regression"
)

// Options configures a Session
type Options struct {
	RegressionOptions *regression.Options
	ArchiveOptions    *archive.Options
}

func NewDefaultOptions() *Options {
	return &Options{
		RegressionOptions: regression.NewDefaultOptions(),
		ArchiveOptions:    archive.NewDefaultOptions(),
	}
}

// NewOptionsFromConfig builds session options from an application configuration
func NewOptionsFromConfig(cfg *config.Config) *Options {
	if cfg == nil {
		return NewDefaultOptions()
	}
	return &Options{
		RegressionOptions: cfg.RegressionOptions(),
		ArchiveOptions:    cfg.ArchiveOptions(),
	}
}

// Validate fills unset sub options with their defaults
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	reg, err := o.RegressionOptions.Validate()
	if err != nil {
		return nil, err
	}
	arc, err := o.ArchiveOptions.Validate()
	if err != nil {
		return nil, err
	}
	return &Options{
		RegressionOptions: reg,
		ArchiveOptions:    arc,
	}, nil
}
