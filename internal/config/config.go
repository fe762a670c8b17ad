// Package config holds the CLI-configurable parameters for a benchmark
// run: how many simulated workers to use, how big a sample to keep, how
// input weights are generated, which selection variants to exercise, and
// the round/wall-time bounds that decide when the run stops. Shaped after
// the flat config struct with a New()/Validate() pair that
// maikadee-AggTradesTool/internal/config/config.go uses to carry
// CLI-derived state into the rest of the program.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"govetachun/resvoir/pkg/errors"
)

const (
	DefaultWorkers   = 4
	DefaultBatchSize = 10000
	DefaultK         = 1000
	DefaultSeed      = 42

	DefaultMinRounds   = 5
	DefaultMaxRounds   = 1000
	DefaultMinWallTime = 2 * time.Second
	DefaultMaxWallTime = 60 * time.Second

	DefaultUniformLo = 1.0
	DefaultUniformHi = 1000.0
	DefaultGaussMean = 500.0
	DefaultGaussStd  = 150.0

	DefaultNumPivots = 16
)

// Config holds every knob the driver exposes on the command line.
type Config struct {
	RunID string

	Workers   int
	BatchSize int
	K         int64
	Seed      uint64
	Verbose   bool

	MinRounds   int
	MaxRounds   int
	MinWallTime time.Duration
	MaxWallTime time.Duration

	UniformLo float64
	UniformHi float64
	GaussMean float64
	GaussStd  float64
	UseGauss  bool

	EnableGather bool
	EnableAMS    bool
	AMSMultiD    []int // numPivots values for ams-multi-<d>, e.g. {8,16,32,64}
}

// New returns a Config populated with defaults; cmd/resvoir binds flags
// to its fields directly, the same way
// maikadee-AggTradesTool/cmd/aggtrades/main.go binds cobra flags to a
// config.New() value.
func New() *Config {
	return &Config{
		RunID:     uuid.NewString(),
		Workers:   DefaultWorkers,
		BatchSize: DefaultBatchSize,
		K:         DefaultK,
		Seed:      DefaultSeed,

		MinRounds:   DefaultMinRounds,
		MaxRounds:   DefaultMaxRounds,
		MinWallTime: DefaultMinWallTime,
		MaxWallTime: DefaultMaxWallTime,

		UniformLo: DefaultUniformLo,
		UniformHi: DefaultUniformHi,
		GaussMean: DefaultGaussMean,
		GaussStd:  DefaultGaussStd,

		EnableGather: true,
		EnableAMS:    true,
		AMSMultiD:    []int{8, 16, 32, 64},
	}
}

// Validate checks the configuration for internal consistency, returning
// a *errors.ReservoirError (config domain) describing the first problem
// found.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.NewConfigError(fmt.Sprintf("workers must be >= 1, got %d", c.Workers), nil)
	}
	if c.BatchSize < 1 {
		return errors.NewConfigError(fmt.Sprintf("batch-size must be >= 1, got %d", c.BatchSize), nil)
	}
	if c.K < 1 {
		return errors.NewConfigError(fmt.Sprintf("k must be >= 1, got %d", c.K), nil)
	}
	if c.MinRounds < 0 || c.MaxRounds < c.MinRounds {
		return errors.NewConfigError(fmt.Sprintf("invalid round bounds: min=%d max=%d", c.MinRounds, c.MaxRounds), nil)
	}
	if c.MinWallTime < 0 || c.MaxWallTime < c.MinWallTime {
		return errors.NewConfigError(fmt.Sprintf("invalid wall-time bounds: min=%s max=%s", c.MinWallTime, c.MaxWallTime), nil)
	}
	if c.UniformLo <= 0 || c.UniformHi <= c.UniformLo {
		return errors.NewConfigError(fmt.Sprintf("invalid uniform range: [%v, %v)", c.UniformLo, c.UniformHi), nil)
	}
	if c.GaussStd <= 0 {
		return errors.NewConfigError(fmt.Sprintf("gaussian stddev must be > 0, got %v", c.GaussStd), nil)
	}
	if !c.EnableGather && !c.EnableAMS && len(c.AMSMultiD) == 0 {
		return errors.NewConfigError("no variant enabled: need at least one of --gather, --ams, --ams-multi", nil)
	}
	for _, d := range c.AMSMultiD {
		if d < 1 {
			return errors.NewConfigError(fmt.Sprintf("ams-multi pivot count must be >= 1, got %d", d), nil)
		}
	}
	return nil
}

// String renders a one-line human-readable summary of the run, in the
// same spirit as Config.String() in the example config package.
func (c *Config) String() string {
	gen := "uniform"
	if c.UseGauss {
		gen = "gaussian"
	}
	return fmt.Sprintf(
		"run=%s workers=%d batch=%d k=%d gen=%s seed=%d rounds=[%d,%d] wall=[%s,%s]",
		c.RunID, c.Workers, c.BatchSize, c.K, gen, c.Seed,
		c.MinRounds, c.MaxRounds, c.MinWallTime, c.MaxWallTime,
	)
}
