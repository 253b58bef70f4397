package runlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/facetlab/stonesim/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestRecordRunAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := &sim.AggregateResult{
		RunID:       "run-1",
		Seed:        42,
		Requested:   100,
		Completed:   100,
		Success:     61,
		Failure:     30,
		Abandoned:   9,
		Probability: 0.61,
	}
	if err := s.RecordRun(ctx, res, "total>=16"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("listed %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.RunID != "run-1" || got.Seed != 42 || got.Success != 61 || got.Goal != "total>=16" {
		t.Errorf("unexpected run summary: %+v", got)
	}
	if got.Probability != 0.61 {
		t.Errorf("probability = %v, want 0.61", got.Probability)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestRecordRunPersistsSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := &sim.AggregateResult{
		RunID:     "run-2",
		Requested: 3,
		Completed: 3,
		Success:   2,
		Failure:   1,
		Sessions: []sim.SessionOutcome{
			{Outcome: sim.Success, Rounds: 10, Final: [3]int{9, 7, 2}},
			{Outcome: sim.Failure, Rounds: 10, Final: [3]int{5, 4, 3}},
			{Outcome: sim.Success, Rounds: 10, Final: [3]int{10, 6, 1}},
		},
	}
	if err := s.RecordRun(ctx, res, "total>=16"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	counts, err := s.SessionOutcomes(ctx, "run-2")
	if err != nil {
		t.Fatalf("SessionOutcomes: %v", err)
	}
	if counts["success"] != 2 || counts["failure"] != 1 {
		t.Errorf("unexpected outcome counts: %v", counts)
	}
}

func TestRecordRunRejectsBadInput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, nil, "total>=16"); err == nil {
		t.Error("expected an error for a nil result")
	}
	if err := s.RecordRun(ctx, &sim.AggregateResult{}, "total>=16"); err == nil {
		t.Error("expected an error for a missing run id")
	}
}

func TestRecordRunDuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := &sim.AggregateResult{RunID: "run-3", Requested: 1, Completed: 1}
	if err := s.RecordRun(ctx, res, "exact 9/7"); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := s.RecordRun(ctx, res, "exact 9/7"); err == nil {
		t.Fatal("expected an error for a duplicate run id")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		res := &sim.AggregateResult{RunID: id, Requested: 1, Completed: 1}
		if err := s.RecordRun(ctx, res, "total>=14"); err != nil {
			t.Fatalf("RecordRun(%s): %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2 (limit applied)", len(runs))
	}
	if runs[0].CreatedAt.Before(runs[1].CreatedAt) {
		t.Errorf("runs not newest-first: %v then %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}
}
