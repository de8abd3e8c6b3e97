// Command tabreg loads a tabular file, resolves missing cells, fits a linear regression of a target
// column on input columns and optionally saves, restores, plots and applies the model.
//
//	tabreg -data houses.csv -inputs rooms,age -target price -missing mean -save houses.trm
//	tabreg -load houses.trm -predict 4,12
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aouyang1/go-tabreg"
	"github.com/aouyang1/go-tabreg/config"
	"github.com/aouyang1/go-tabreg/errkind"
	"github.com/aouyang1/go-tabreg/missing"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const headRows = 5

var ErrNothingToDo = errors.New("either -data or -load must be given")

type flags struct {
	configPath string
	data       string
	detect     bool
	inputs     string
	target     string
	strategy   string
	constant   string
	describe   string
	save       string
	load       string
	predict    string
	plot       string
	profile    string
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.configPath, "config", "", "path to a yaml configuration file")
	flag.StringVar(&f.data, "data", "", "tabular file to load (.csv, .xlsx, .xls, .sqlite, .db)")
	flag.BoolVar(&f.detect, "detect", false, "report missing cells of every column")
	flag.StringVar(&f.inputs, "inputs", "", "comma separated input columns")
	flag.StringVar(&f.target, "target", "", "target column")
	flag.StringVar(&f.strategy, "missing", "", "missing value strategy: remove-rows, fill-mean, fill-median or fill-constant")
	flag.StringVar(&f.constant, "constant", "", "fill value for fill-constant")
	flag.StringVar(&f.describe, "describe", "", "free text description stored with the model")
	flag.StringVar(&f.save, "save", "", "write the fitted model archive to this path")
	flag.StringVar(&f.load, "load", "", "restore a model archive instead of fitting")
	flag.StringVar(&f.predict, "predict", "", "comma separated input values to predict from")
	flag.StringVar(&f.plot, "plot", "", "write an html plot of a single input model to this path")
	flag.StringVar(&f.profile, "profile", "", "profile the run: cpu or mem")
	flag.Parse()
	return f
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func run(f *flags, logger *zap.Logger, opt *tabreg.Options) error {
	if f.data == "" && f.load == "" {
		return ErrNothingToDo
	}

	s, err := tabreg.NewSession(opt, logger)
	if err != nil {
		return err
	}

	if f.load != "" {
		b, err := s.LoadBundle(f.load)
		if err != nil {
			return err
		}
		fmt.Println(b.Formula)
		fmt.Println(b.Report())
		if b.Description != "" {
			fmt.Println(b.Description)
		}
	} else {
		if err := fitFromData(s, f); err != nil {
			return err
		}
	}

	if f.describe != "" {
		if err := s.Describe(f.describe); err != nil {
			return err
		}
	}
	if f.save != "" {
		if err := s.SaveBundle(f.save); err != nil {
			return err
		}
		fmt.Printf("saved model to %s\n", f.save)
	}
	if f.plot != "" {
		if err := writePlot(s, f.plot); err != nil {
			return err
		}
	}
	if f.predict != "" {
		pred, err := s.Predict(splitList(f.predict))
		if err != nil {
			return err
		}
		fmt.Printf("%s = %.3f\n", s.Bundle().Target(), pred)
	}
	return nil
}

func fitFromData(s *tabreg.Session, f *flags) error {
	if err := s.LoadTable(f.data); err != nil {
		return err
	}
	t := s.Table()
	if err := t.Summary(os.Stdout); err != nil {
		return err
	}
	if err := t.Head(os.Stdout, headRows); err != nil {
		return err
	}

	if f.detect {
		coords, err := s.DetectMissing()
		if err != nil {
			return err
		}
		fmt.Printf("%d missing cells\n", len(coords))
		for _, c := range coords {
			fmt.Printf("  row %d, column %q\n", c.Row, c.Column)
		}
	}

	inputs := splitList(f.inputs)
	if len(inputs) == 0 && f.target == "" {
		return nil
	}
	if _, err := s.SelectColumns(inputs, f.target); err != nil {
		return err
	}

	if f.strategy != "" {
		strategy, err := missing.ParseStrategy(f.strategy)
		if err != nil {
			return err
		}
		res, err := s.ApplyMissingPolicy(strategy, f.constant)
		if err != nil {
			return err
		}
		fmt.Printf("%s affected %d cells, removed %d rows\n", res.Strategy, res.Affected, res.RowsRemoved)
	}

	b, err := s.Fit()
	if err != nil {
		return err
	}
	fmt.Println(b.Formula)
	fmt.Println(b.Report())
	return nil
}

func writePlot(s *tabreg.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.PlotFit(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func main() {
	os.Exit(realMain(parseFlags()))
}

// realMain runs the command and returns the process exit code so deferred cleanup runs before exit
func realMain(f *flags) int {
	switch f.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", f.profile)
		return 2
	}

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load config, %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger, %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := run(f, logger, tabreg.NewOptionsFromConfig(cfg)); err != nil {
		logger.Error("tabreg failed", zap.Stringer("kind", errkind.Of(err)), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
