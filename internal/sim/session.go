// Package sim drives stones through faceting sessions and aggregates
// many independent sessions into probability estimates.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/facetlab/stonesim/internal/policy"
	"github.com/facetlab/stonesim/internal/policy/goal"
	"github.com/facetlab/stonesim/internal/stone"
	"github.com/facetlab/stonesim/internal/table"
	"github.com/facetlab/stonesim/internal/trace"
)

// Outcome is the terminal classification of one session. Abandonment
// and failure are normal outcomes, not errors.
type Outcome int

const (
	// Failure is the zero value: the round limit was reached without
	// satisfying the goal.
	Failure Outcome = iota
	Success
	Abandoned
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Abandoned:
		return "abandoned"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// SessionOutcome is one finished session: its classification, the final
// stone state, and optionally the full trace.
type SessionOutcome struct {
	Outcome Outcome              `json:"outcome"`
	Rounds  int                  `json:"rounds"`
	Final   [stone.SlotCount]int `json:"final"`
	Trace   *trace.Trace         `json:"trace,omitempty"`
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// RoundEngine draws the candidate set for the current round. It is
// stateless beyond delegating to the distribution table and never
// mutates the stone; slots with an exhausted attempt budget are
// excluded from the draw.
type RoundEngine struct {
	Table           *table.Table
	OptionsPerRound int
}

// NextRound returns one fresh draw per call. Draws are independent;
// nothing correlates one round with the next. A nil draw means no slot
// can legally be offered anymore.
func (e *RoundEngine) NextRound(s *stone.Stone, rng *rand.Rand) stone.RoundDraw {
	return e.Table.SampleWhere(rng, e.OptionsPerRound, func(o stone.Option) bool {
		return !s.Exhausted(o.Slot)
	})
}

// Runner drives a single stone from round zero to termination. One
// Runner is shared read-only across all sessions of a batch; each
// session gets its own stone and its own rng.
type Runner struct {
	Engine     *RoundEngine
	Policy     *policy.Policy
	Goal       goal.Goal
	RoundLimit int
	MaxLevel   int
	// Budgets are the per-slot attempt budgets for a fresh stone, in
	// slot order; stone.Unlimited disables budgeting for a slot.
	Budgets [stone.SlotCount]int
}

// Validate checks the runner's structural configuration once, before
// any session runs.
func (r *Runner) Validate() error {
	if r.Engine == nil || r.Engine.Table == nil {
		return fmt.Errorf("sim: distribution table is required")
	}
	if r.Engine.OptionsPerRound <= 0 {
		return fmt.Errorf("sim: options per round must be positive, got %d", r.Engine.OptionsPerRound)
	}
	if r.Policy == nil {
		return fmt.Errorf("sim: decision policy is required")
	}
	if r.Goal == nil {
		return fmt.Errorf("sim: acceptance goal is required")
	}
	if r.RoundLimit <= 0 {
		return fmt.Errorf("sim: round limit must be positive, got %d", r.RoundLimit)
	}
	if r.MaxLevel <= 0 {
		return fmt.Errorf("sim: max level must be positive, got %d", r.MaxLevel)
	}
	if err := r.Goal.Validate(r.MaxLevel); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	return nil
}

// Run executes one single-pass session. record retains the full trace;
// without it the session costs no memory beyond the stone itself.
func (r *Runner) Run(rng *rand.Rand, record bool) SessionOutcome {
	s := stone.New(r.MaxLevel).WithBudgets(r.Budgets[0], r.Budgets[1], r.Budgets[2])

	var tr *trace.Trace
	if record {
		tr = trace.New(s)
	}

	abandoned := false
	for !s.Terminal(r.RoundLimit) {
		draw := r.Engine.NextRound(s, rng)
		d := r.Policy.Decide(s, draw, r.RoundLimit-s.Round()-1)
		if d.Abandon {
			abandoned = true
			break
		}
		s.Apply(d.Option)
		if record {
			tr.Record(s.Round(), draw, d.Index, s.Levels())
		}
	}

	out := SessionOutcome{
		Outcome: classify(r.Goal, s, abandoned),
		Rounds:  s.Round(),
		Final:   s.Levels(),
	}
	if record {
		tr.Finish(out.Outcome.String(), s.Levels(), abandoned)
		out.Trace = tr
	}
	return out
}

// classify orders matters: a stone that meets the goal counts as a
// success even when the policy gave up afterwards.
func classify(g goal.Goal, s *stone.Stone, abandoned bool) Outcome {
	switch {
	case g.Satisfied(s):
		return Success
	case abandoned:
		return Abandoned
	default:
		return Failure
	}
}
