package config

import (
	"fmt"

	"github.com/facetlab/stonesim/internal/engraving"
	"github.com/facetlab/stonesim/internal/policy"
	"github.com/facetlab/stonesim/internal/policy/goal"
	"github.com/facetlab/stonesim/internal/sim"
	"github.com/facetlab/stonesim/internal/stone"
	"github.com/facetlab/stonesim/internal/table"
)

// Build resolves the configuration into a validated session runner.
// Every configuration error surfaces here, before any session runs.
func (c Config) Build() (*sim.Runner, error) {
	spec := engraving.StoneSpec{
		PositiveA: c.Stone.PositiveA,
		PositiveB: c.Stone.PositiveB,
		Negative:  c.Stone.Negative,
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("config: stone: %w", err)
	}

	entries := make([]table.Entry, 0, len(c.Table))
	for i, e := range c.Table {
		sl, err := stone.ParseSlot(e.Slot)
		if err != nil {
			return nil, fmt.Errorf("config: table entry %d: %w", i, err)
		}
		entries = append(entries, table.Entry{
			Option: stone.Option{Slot: sl, Delta: e.Delta},
			Weight: e.Weight,
		})
	}
	tb, err := table.New(entries)
	if err != nil {
		return nil, fmt.Errorf("config: table: %w", err)
	}

	g, err := c.buildGoal()
	if err != nil {
		return nil, err
	}

	weights, err := engraving.ResolvePriorities(c.Priorities, spec)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	negCap, err := engraving.ResolveNegativeCap(c.NegativeCaps, spec, c.NegativeCap)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pol, err := policy.New(policy.Config{
		Priorities:     weights,
		Goal:           g,
		NegativeCap:    negCap,
		Preferred:      engraving.PreferredSlot(c.Priorities, spec),
		MaxRoundGain:   tb.MaxPositiveDelta(),
		DisablePruning: c.DisablePruning,
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	r := &sim.Runner{
		Engine:     &sim.RoundEngine{Table: tb, OptionsPerRound: c.OptionsPerRound},
		Policy:     pol,
		Goal:       g,
		RoundLimit: c.RoundLimit,
		MaxLevel:   c.MaxLevel,
		Budgets: [stone.SlotCount]int{
			budget(c.Budgets.PositiveA),
			budget(c.Budgets.PositiveB),
			budget(c.Budgets.Negative),
		},
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return r, nil
}

// ShouldSimulate applies the possible-engravings filter to the
// configured stone. A false return means the stone is not worth
// faceting and no batch should run.
func (c Config) ShouldSimulate() (bool, error) {
	spec := engraving.StoneSpec{
		PositiveA: c.Stone.PositiveA,
		PositiveB: c.Stone.PositiveB,
		Negative:  c.Stone.Negative,
	}
	if err := spec.Validate(); err != nil {
		return false, fmt.Errorf("config: stone: %w", err)
	}
	f, err := engraving.NewFilter(c.PossibleEngravings)
	if err != nil {
		return false, fmt.Errorf("config: %w", err)
	}
	return f.Match(spec), nil
}

func (c Config) buildGoal() (goal.Goal, error) {
	switch c.Goal.Mode {
	case "total":
		return goal.Total{Total: c.Goal.Total}, nil
	case "exact":
		return goal.Exact{A: c.Goal.A, B: c.Goal.B}, nil
	case "expr":
		g, err := goal.NewExpr(c.Goal.Expr)
		if err != nil {
			return nil, fmt.Errorf("config: goal: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("config: unknown goal mode %q", c.Goal.Mode)
}

// budget maps the config convention (zero = unlimited) onto the stone's.
func budget(n int) int {
	if n <= 0 {
		return stone.Unlimited
	}
	return n
}
