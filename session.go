package tabreg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aouyang1/go-tabreg/archive"
	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/missing"
	"github.com/aouyang1/go-tabreg/regression"
	"github.com/aouyang1/go-tabreg/selection"
	"github.com/aouyang1/go-tabreg/source"
	"github.com/aouyang1/go-tabreg/stats"
	"github.com/aouyang1/go-tabreg/table"
	"go.uber.org/zap"
)

var ErrPlotUnavailable = errors.New("plot is only available for a single input column")

// CollinearityThreshold is the R² of an input regressed on the other inputs above which a fit
// logs a collinearity warning
const CollinearityThreshold = 0.99

// Session owns the state of one modeling session: the loaded table, the confirmed selection and
// the current bundle. Loading a new table or restoring a bundle supersedes all three. A Session is
// safe for concurrent use.
type Session struct {
	opt      *Options
	loader   *source.Loader
	archiver *archive.Archiver
	logger   *zap.Logger

	loading atomic.Bool

	mu     sync.Mutex
	table  *table.Table
	sel    *selection.Selection
	bundle *regression.Bundle
}

// NewSession creates an empty session. A nil opt uses NewDefaultOptions and a nil logger discards
// output.
func NewSession(opt *Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	arc, err := archive.New(opt.ArchiveOptions, logger)
	if err != nil {
		return nil, err
	}
	return &Session{
		opt:      opt,
		loader:   source.NewLoader(logger),
		archiver: arc,
		logger:   logger,
	}, nil
}

// LoadTable reads path and makes it the session table
func (s *Session) LoadTable(path string) error {
	if !s.loading.CompareAndSwap(false, true) {
		return fmt.Errorf("%s, %w", path, errkind.ErrLoadInProgress)
	}
	defer s.loading.Store(false)

	t, err := s.loader.Load(path)
	if err != nil {
		return err
	}
	s.setTable(t)
	return nil
}

// LoadTableAsync reads path on its own goroutine. The returned channel delivers the outcome once
// and is closed. A call made while another load is outstanding fails with LoadInProgress.
func (s *Session) LoadTableAsync(ctx context.Context, path string) (<-chan error, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s, %w", path, errkind.ErrLoadInProgress)
	}

	done := make(chan error, 1)
	results := s.loader.LoadAsync(ctx, path)
	go func() {
		defer close(done)
		defer s.loading.Store(false)

		res := <-results
		if res.Err != nil {
			done <- res.Err
			return
		}
		s.setTable(res.Table)
		done <- nil
	}()
	return done, nil
}

func (s *Session) setTable(t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = t
	s.sel = nil
	s.bundle = nil
}

// Table returns the session table or nil if none is loaded
func (s *Session) Table() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Selection returns the confirmed selection, ok is false until one is confirmed
func (s *Session) Selection() (selection.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel == nil {
		return selection.Selection{}, false
	}
	return *s.sel, true
}

// Bundle returns the current bundle or nil before a fit or restore
func (s *Session) Bundle() *regression.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// DetectMissing returns the missing cells of columns. With no columns every table column is
// inspected.
func (s *Session) DetectMissing(columns ...string) ([]missing.Coord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, errkind.ErrNoTable
	}
	if len(columns) == 0 {
		columns = missing.Columns(s.table)
	}
	return missing.Detect(s.table, columns)
}

// ApplyMissingPolicy resolves the missing cells of columns in the session table. With no columns
// the confirmed selection is used, or every table column if nothing is selected yet.
func (s *Session) ApplyMissingPolicy(strategy missing.Strategy, constant string, columns ...string) (missing.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return missing.Result{}, errkind.ErrNoTable
	}
	if len(columns) == 0 {
		if s.sel != nil {
			columns = s.sel.Columns()
		} else {
			columns = missing.Columns(s.table)
		}
	}
	res, err := missing.Apply(s.table, columns, strategy, constant)
	if err != nil {
		return res, err
	}
	s.logger.Info("applied missing data policy",
		zap.Stringer("strategy", res.Strategy),
		zap.Strings("columns", columns),
		zap.Int("affected", res.Affected),
		zap.Int("rows_removed", res.RowsRemoved),
	)
	return res, nil
}

// SelectColumns validates and confirms an input and target selection
func (s *Session) SelectColumns(inputs []string, target string) (selection.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return selection.Selection{}, errkind.ErrNoTable
	}
	sel, err := selection.Validate(s.table, inputs, target)
	if err != nil {
		return selection.Selection{}, err
	}
	s.sel = &sel
	return sel, nil
}

// Fit trains a model on the confirmed selection and makes it the session bundle
func (s *Session) Fit() (*regression.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, errkind.ErrNoTable
	}
	if s.sel == nil {
		return nil, fmt.Errorf("no confirmed selection, %w", errkind.ErrEmptySelection)
	}
	b, err := regression.Fit(s.table, *s.sel, s.opt.RegressionOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to fit model, %w", err)
	}
	s.warnDegenerate(b)

	s.bundle = b
	s.logger.Info("fit model",
		zap.String("id", b.ID),
		zap.String("formula", b.Formula),
		zap.Float64("train_r2", b.Metrics.Training.R2),
		zap.Float64("test_r2", b.Metrics.Test.R2),
	)
	return b, nil
}

// warnDegenerate logs inputs that are constant or nearly collinear with the others
func (s *Session) warnDegenerate(b *regression.Bundle) {
	features := make(map[string][]float64, len(b.Selection.Inputs))
	for _, name := range b.Selection.Inputs {
		c, err := b.Table.Column(name)
		if err != nil {
			return
		}
		features[name] = c.Float64s()
		if stats.Constant(features[name]) {
			s.logger.Warn("input is constant and carries no weight", zap.String("column", name))
		}
	}
	if len(features) < 2 {
		return
	}

	r2, err := stats.Collinearity(features)
	if err != nil {
		s.logger.Debug("skipping collinearity check", zap.Error(err))
		return
	}
	for _, name := range b.Selection.Inputs {
		if r2[name] >= CollinearityThreshold {
			s.logger.Warn("input is nearly a linear combination of the other inputs",
				zap.String("column", name),
				zap.Float64("r2", r2[name]),
			)
		}
	}
}

// Describe sets the free text description of the session bundle
func (s *Session) Describe(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return errkind.ErrNoModel
	}
	s.bundle.Description = strings.TrimSpace(text)
	return nil
}

// Predict applies the session bundle to one value per input column
func (s *Session) Predict(values []string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return 0, errkind.ErrNoModel
	}
	return regression.Predict(s.bundle, values)
}

// PlotSeries returns the scatter data of the session bundle when it has a single input
func (s *Session) PlotSeries() (regression.Series, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return regression.Series{}, false
	}
	return regression.PlotSeries(s.bundle)
}

// PlotFit renders the session bundle plot as html
func (s *Session) PlotFit(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return errkind.ErrNoModel
	}
	return PlotFit(w, s.bundle)
}

// SaveBundle writes the session bundle to path
func (s *Session) SaveBundle(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return errkind.ErrNoModel
	}
	return s.archiver.Save(s.bundle, path)
}

// LoadBundle restores a bundle from path. The restored bundle, its table snapshot and its selection
// replace the session state.
func (s *Session) LoadBundle(path string) (*regression.Bundle, error) {
	b, err := s.archiver.Load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel := b.Selection
	s.table = b.Table.Copy()
	s.sel = &sel
	s.bundle = b
	return b, nil
}
