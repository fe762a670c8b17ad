// Command resvoir runs a benchmark of the distributed weighted
// reservoir sampling engine: one or more selection variants (single-pivot
// ams, multi-pivot ams-multi-<d>, and the naive gather baseline), each
// driven by the same stream of synthetic weighted items, with live
// progress and a final summary.
//
// Grounded on
// _examples/maikadee-AggTradesTool/cmd/aggtrades/main.go's shape: a
// package-level cfg = config.New(), a single cobra.Command with flags
// bound directly to cfg fields, signal-driven graceful shutdown, and a
// final summary print. The stopping rule the run loop implements is
// grounded on _examples/original_source/benchmark/res.cpp's min/max
// round and wall-clock bookkeeping around its batch loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"govetachun/resvoir/internal/config"
	"govetachun/resvoir/internal/fabric"
	"govetachun/resvoir/internal/gather"
	"govetachun/resvoir/internal/geninput"
	"govetachun/resvoir/internal/reservoir"
	"govetachun/resvoir/internal/rng"
	"govetachun/resvoir/internal/statsui"
)

var cfg = config.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "resvoir",
		Short: "Benchmark distributed weighted reservoir sampling variants",
		Long: `resvoir drives one or more distributed weighted reservoir sampling
variants (single-pivot ams, multi-pivot ams-multi-<d>, and the naive
gather-to-root baseline) against the same synthetic weighted input
stream, reporting running sample size, admission threshold, and
selection rounds for each.`,
		RunE: run,
	}

	flags := rootCmd.Flags()
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of simulated PEs")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "items per batch per worker")
	flags.Int64Var(&cfg.K, "k", cfg.K, "sample size to maintain")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG root seed")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	flags.IntVar(&cfg.MinRounds, "min-rounds", cfg.MinRounds, "minimum batches before the run may stop")
	flags.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "maximum batches before the run stops")
	flags.DurationVar(&cfg.MinWallTime, "min-wall-time", cfg.MinWallTime, "minimum wall time before the run may stop")
	flags.DurationVar(&cfg.MaxWallTime, "max-wall-time", cfg.MaxWallTime, "maximum wall time before the run stops")

	flags.Float64Var(&cfg.UniformLo, "uniform-lo", cfg.UniformLo, "uniform generator lower bound")
	flags.Float64Var(&cfg.UniformHi, "uniform-hi", cfg.UniformHi, "uniform generator upper bound")
	flags.Float64Var(&cfg.GaussMean, "gauss-mean", cfg.GaussMean, "gaussian generator mean")
	flags.Float64Var(&cfg.GaussStd, "gauss-std", cfg.GaussStd, "gaussian generator stddev")
	flags.BoolVar(&cfg.UseGauss, "gaussian", cfg.UseGauss, "use the gaussian weight generator instead of uniform")

	flags.BoolVar(&cfg.EnableGather, "gather", cfg.EnableGather, "run the naive gather-to-root baseline")
	flags.BoolVar(&cfg.EnableAMS, "ams", cfg.EnableAMS, "run the single-pivot ams variant")
	flags.IntSliceVar(&cfg.AMSMultiD, "ams-multi", cfg.AMSMultiD, "pivot counts for ams-multi-<d> variants")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logLevel := log.InfoLevel
	if cfg.Verbose {
		logLevel = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: logLevel})
	logger.Info("starting run", "run_id", cfg.RunID, "config", cfg.String())

	ui := statsui.New(!cfg.Verbose, cfg.RunID)
	ui.Start()
	defer ui.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("interrupted, cancelling run")
		cancel()
	}()

	startTime := time.Now()

	variants := buildVariants(cfg)
	for _, v := range variants {
		if err := runVariant(ctx, cfg, logger, ui, v); err != nil {
			return fmt.Errorf("variant %s: %w", v.name, err)
		}
	}

	ui.Stop()
	ui.PrintFinalStats(time.Since(startTime))
	return nil
}

type variant struct {
	name      string
	numPivots int
	isGather  bool
}

func buildVariants(cfg *config.Config) []variant {
	var variants []variant
	if cfg.EnableAMS {
		variants = append(variants, variant{name: "ams", numPivots: 1})
	}
	for _, d := range cfg.AMSMultiD {
		variants = append(variants, variant{name: fmt.Sprintf("ams-multi-%d", d), numPivots: d})
	}
	if cfg.EnableGather {
		variants = append(variants, variant{name: "gather", isGather: true})
	}
	return variants
}

// runVariant drives one variant across every simulated PE inside a
// single fabric.Run call, so each PE's engine state (its tree, its
// threshold) survives across the whole run's batches. Every PE decides
// locally whether to keep going, but the decision itself is made once
// at rank 0 and broadcast, so every PE's batch loop stays in lockstep —
// required since Insert itself is a collective operation.
func runVariant(ctx context.Context, cfg *config.Config, logger *log.Logger, ui *statsui.UI, v variant) error {
	startTime := time.Now()
	var round int64

	return fabric.Run(ctx, cfg.Workers, func(ctx context.Context, pe *fabric.PE) error {
		gen := makeGenerator(cfg, pe.Rank())

		var reservoirEngine *reservoir.Engine
		var gatherEngine *gather.Engine
		if v.isGather {
			gatherEngine = gather.New(pe, cfg.K, cfg.Seed, logger)
		} else {
			reservoirEngine = reservoir.New(pe, cfg.K, cfg.Seed, v.numPivots, logger)
		}

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			r := int(atomic.LoadInt64(&round))
			elapsed := time.Since(startTime)
			if !decideContinue(pe, cfg, r, elapsed) {
				return nil
			}

			batch := makeBatch(gen, cfg.BatchSize)

			var sampleSize int64
			var threshold float64
			var rounds int
			var elapsedBatch time.Duration

			if v.isGather {
				stats, err := gatherEngine.Insert(toGatherItems(batch))
				if err != nil {
					return err
				}
				sampleSize = gatherEngine.Size()
				threshold = stats.Threshold
				elapsedBatch = stats.TotalTime
			} else {
				stats, err := reservoirEngine.Insert(batch)
				if err != nil {
					return err
				}
				sampleSize = reservoirEngine.Size()
				threshold = stats.Threshold
				rounds = stats.Selection.Rounds
				elapsedBatch = stats.TotalTime
			}

			if pe.Rank() == 0 {
				ui.Update(statsui.VariantUpdate{
					Variant:      v.name,
					BatchID:      int(r),
					SampleSize:   sampleSize,
					Threshold:    threshold,
					Rounds:       rounds,
					BatchElapsed: elapsedBatch,
				})
				atomic.AddInt64(&round, 1)
			}
			pe.Barrier()
		}
	})
}

// decideContinue implements the two-sided stopping rule: the run keeps
// going until at least MinRounds batches AND MinWallTime have elapsed,
// and stops unconditionally once MaxRounds or MaxWallTime is hit. Rank 0
// makes the call and broadcasts it so every PE agrees.
func decideContinue(pe *fabric.PE, cfg *config.Config, round int, elapsed time.Duration) bool {
	var decision int64
	if pe.Rank() == 0 {
		cont := true
		switch {
		case round >= cfg.MaxRounds || elapsed >= cfg.MaxWallTime:
			cont = false
		case round < cfg.MinRounds || elapsed < cfg.MinWallTime:
			cont = true
		default:
			cont = false
		}
		if cont {
			decision = 1
		}
	}
	return pe.BroadcastInt64(0, decision) == 1
}

func makeGenerator(cfg *config.Config, rank int) geninput.Generator {
	src := rng.PerWorker(cfg.Seed, rank)
	if cfg.UseGauss {
		return geninput.NewGaussian(src, cfg.GaussMean, cfg.GaussStd)
	}
	return geninput.NewUniform(src, cfg.UniformLo, cfg.UniformHi)
}

func makeBatch(gen geninput.Generator, n int) []reservoir.Item {
	batch := make([]reservoir.Item, n)
	for i := 0; i < n; i++ {
		batch[i] = reservoir.Item{Weight: gen.Next(), ID: int32(i)}
	}
	return batch
}

func toGatherItems(batch []reservoir.Item) []gather.Item {
	out := make([]gather.Item, len(batch))
	for i, it := range batch {
		out[i] = gather.Item{Weight: it.Weight, ID: it.ID}
	}
	return out
}
