package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/facetlab/stonesim/internal/config"
	"github.com/facetlab/stonesim/internal/sim"
	"github.com/facetlab/stonesim/internal/sim/runlog"
	"github.com/facetlab/stonesim/internal/trace"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file (built-in defaults when empty)")
	sessions := flag.Int("n", 0, "session count override")
	seed := flag.Int64("seed", 0, "base seed override")
	workers := flag.Int("workers", 0, "worker count override")
	verbose := flag.Bool("v", false, "keep per-session outcomes and traces")
	jsonOut := flag.String("json", "", "write the aggregate result as JSON to this file")
	dotOut := flag.String("dot", "", "write the first session's trace as DOT to this file (implies -v)")
	runlogPath := flag.String("runlog", "", "append the result to this SQLite run log")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *sessions > 0 {
		cfg.Sessions = *sessions
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *verbose || *dotOut != "" {
		cfg.Verbose = true
	}
	if *runlogPath != "" {
		cfg.Output.Runlog = *runlogPath
	}
	if *jsonOut != "" {
		cfg.Output.JSON = *jsonOut
	}
	if *dotOut != "" {
		cfg.Output.DOT = *dotOut
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ok, err := cfg.ShouldSimulate()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("stone %s / %s is outside the allowed engravings, nothing to simulate\n",
			cfg.Stone.PositiveA, cfg.Stone.PositiveB)
		return nil
	}

	runner, err := cfg.Build()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []sim.BatchOption{
		sim.WithWorkers(cfg.Workers),
		sim.WithVerbose(cfg.Verbose),
	}
	var async *sim.AsyncSessionObserver
	if cfg.Verbose {
		async = sim.NewAsyncSessionObserver(sim.NewOutcomeLogger(logger), 4096)
		defer async.Close()
		opts = append(opts, sim.WithObserver(async))
	}

	batch, err := sim.NewBatch(runner, cfg.Seed, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := batch.Run(ctx, cfg.Sessions)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("batch cancelled", "completed", res.Completed, "requested", res.Requested)
	}
	if async != nil {
		async.Close()
		if n := async.Dropped(); n > 0 {
			logger.Warn("observer dropped events", "dropped", n)
		}
	}

	fmt.Printf("Faceting batch finished\n")
	fmt.Printf("- run_id: %s\n", res.RunID)
	fmt.Printf("- goal: %s\n", runner.Goal)
	fmt.Printf("- seed: %d\n", res.Seed)
	fmt.Printf("- sessions: %d/%d\n", res.Completed, res.Requested)
	fmt.Printf("- success: %d\n", res.Success)
	fmt.Printf("- failure: %d\n", res.Failure)
	fmt.Printf("- abandoned: %d\n", res.Abandoned)
	fmt.Printf("- probability: %.4f\n", res.Probability)

	return writeOutputs(cfg, runner, res)
}

func writeOutputs(cfg config.Config, runner *sim.Runner, res *sim.AggregateResult) error {
	if cfg.Output.JSON != "" {
		raw, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if err := os.WriteFile(cfg.Output.JSON, raw, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	if cfg.Output.DOT != "" {
		if len(res.Sessions) == 0 || res.Sessions[0].Trace == nil {
			return fmt.Errorf("no trace available for DOT output")
		}
		dot, err := trace.DOT(res.Sessions[0].Trace)
		if err != nil {
			return fmt.Errorf("render trace: %w", err)
		}
		if err := os.WriteFile(cfg.Output.DOT, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}

	if cfg.Output.Runlog != "" {
		store, err := runlog.Open(cfg.Output.Runlog)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.RecordRun(context.Background(), res, runner.Goal.String()); err != nil {
			return err
		}
	}
	return nil
}
