package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/facetlab/stonesim/internal/config"
	"github.com/facetlab/stonesim/internal/sim"
	"github.com/facetlab/stonesim/internal/sim/runlog"
	"github.com/facetlab/stonesim/internal/trace"
)

const configYAML = `
maxLevel: 10
roundLimit: 30
optionsPerRound: 3
sessions: 200
seed: 42
workers: 4
stone:
  positiveA: Grudge
  positiveB: Cursed Doll
  negative: Atk. Power Reduction
possibleEngravings:
  - Grudge
priorities:
  - Grudge
  - Cursed Doll
negativeCap: 4
goal:
  mode: expr
  expr: total >= 14 && min(a, b) >= 6
table:
  - { slot: positive-a, delta: 1, weight: 3 }
  - { slot: positive-a, delta: 0, weight: 1 }
  - { slot: positive-b, delta: 1, weight: 3 }
  - { slot: positive-b, delta: 0, weight: 1 }
  - { slot: negative, delta: 1, weight: 3 }
budgets:
  positiveA: 10
  positiveB: 10
  negative: 10
`

func TestConfigToBatch_Integration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stonesim.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := cfg.ShouldSimulate()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("configured stone should pass its own filter")
	}

	runner, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	batch, err := sim.NewBatch(runner, cfg.Seed, sim.WithWorkers(cfg.Workers), sim.WithVerbose(true))
	if err != nil {
		t.Fatal(err)
	}
	res, err := batch.Run(context.Background(), cfg.Sessions)
	if err != nil {
		t.Fatal(err)
	}

	if res.Completed != cfg.Sessions {
		t.Fatalf("completed %d sessions, want %d", res.Completed, cfg.Sessions)
	}
	if sum := res.Success + res.Failure + res.Abandoned; sum != res.Completed {
		t.Fatalf("outcome counts sum to %d, want %d", sum, res.Completed)
	}

	// Budgets of 10 per slot bound every session's stone.
	for i, out := range res.Sessions {
		for sl, lv := range out.Final {
			if lv < 0 || lv > cfg.MaxLevel {
				t.Fatalf("session %d slot %d level %d out of range", i, sl, lv)
			}
		}
		if out.Rounds > cfg.RoundLimit {
			t.Fatalf("session %d ran %d rounds, limit %d", i, out.Rounds, cfg.RoundLimit)
		}
	}

	dot, err := trace.DOT(res.Sessions[0].Trace)
	if err != nil {
		t.Fatal(err)
	}
	if dot == "" {
		t.Fatal("expected DOT output for the first session")
	}

	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.RecordRun(context.Background(), res, runner.Goal.String()); err != nil {
		t.Fatal(err)
	}
	runs, err := store.ListRuns(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != res.RunID {
		t.Fatalf("run log did not round-trip: %+v", runs)
	}
}
