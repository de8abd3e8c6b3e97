// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/go-tabreg/archive"
	"github.com/aouyang1/go-tabreg/regression"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvLogLevel    = "TABREG_LOG_LEVEL"
	EnvCompression = "TABREG_COMPRESSION"
	EnvSeed        = "TABREG_SEED"
)

var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidTestFraction = errors.New("split test fraction must be strictly between 0 and 1")
)

// Config defines the structure for all application configuration.
type Config struct {
	LogLevel string      `yaml:"log_level"`
	Split    SplitConf   `yaml:"split"`
	Archive  ArchiveConf `yaml:"archive"`
}

// SplitConf holds how rows are divided between training and evaluation.
type SplitConf struct {
	TestFraction float64 `yaml:"test_fraction"`
	Seed         uint64  `yaml:"seed"`
}

// ArchiveConf holds how model archives are written.
type ArchiveConf struct {
	Compression Compression `yaml:"compression"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Split: SplitConf{
			TestFraction: regression.DefaultTestFraction,
			Seed:         regression.DefaultSeed,
		},
		Archive: ArchiveConf{
			Compression: Compression(archive.CompressionZstd),
		},
	}
}

// LoadConfig loads configuration from the specified YAML file path
// and environment variables. An empty path skips the file.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse %s, %w", configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		c.LogLevel = logLevel
	}
	if compression := os.Getenv(EnvCompression); compression != "" {
		ct, err := archive.ParseCompression(compression)
		if err != nil {
			return fmt.Errorf("%s, %w", EnvCompression, err)
		}
		c.Archive.Compression = Compression(ct)
	}
	if seed := os.Getenv(EnvSeed); seed != "" {
		s, err := strconv.ParseUint(strings.TrimSpace(seed), 10, 64)
		if err != nil {
			return fmt.Errorf("%s, %w", EnvSeed, err)
		}
		c.Split.Seed = s
	}
	return nil
}

// Validate checks the values that would otherwise fail late in the pipeline.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Split.TestFraction <= 0 || c.Split.TestFraction >= 1 {
		return fmt.Errorf("got %f, %w", c.Split.TestFraction, ErrInvalidTestFraction)
	}
	if _, err := archive.GetCodec(c.Archive.Compression.Type()); err != nil {
		return err
	}
	return nil
}

// Level parses the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("%q, %w", c.LogLevel, ErrInvalidLogLevel)
	}
	return lvl, nil
}

// RegressionOptions returns the split settings as fit options.
func (c *Config) RegressionOptions() *regression.Options {
	return &regression.Options{
		TestFraction: c.Split.TestFraction,
		Seed:         c.Split.Seed,
	}
}

// ArchiveOptions returns the archive settings as archiver options.
func (c *Config) ArchiveOptions() *archive.Options {
	return &archive.Options{
		Compression: c.Archive.Compression.Type(),
	}
}
