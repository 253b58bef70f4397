// Package table holds the catalog of possible per-round adjustments and
// their relative likelihoods, plus the weighted sampling that produces a
// round's candidate draw.
package table

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/facetlab/stonesim/internal/stone"
)

var (
	ErrEmptyCatalog = errors.New("distribution table has no entries")
	ErrZeroWeights  = errors.New("distribution table weights are all zero")
)

// Entry pairs one adjustment option with its relative weight. Weights do
// not need to sum to anything; only ratios matter.
type Entry struct {
	Option stone.Option
	Weight float64
}

// Table is an immutable weighted catalog. Safe for concurrent use: all
// randomness comes from the rng passed to Sample.
type Table struct {
	entries []Entry
	total   float64
}

// New validates the catalog once so sampling itself cannot fail.
func New(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	total := 0.0
	for i, e := range entries {
		if !e.Option.Slot.Valid() {
			return nil, fmt.Errorf("entry %d: invalid slot %d", i, int(e.Option.Slot))
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("entry %d (%s): negative weight %v", i, e.Option, e.Weight)
		}
		total += e.Weight
	}
	if total == 0 {
		return nil, ErrZeroWeights
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Table{entries: cp, total: total}, nil
}

// Sample draws n options independently, with replacement, according to
// the configured weights. Given the same rng state it always produces
// the same draw.
func (t *Table) Sample(rng *rand.Rand, n int) stone.RoundDraw {
	draw := make(stone.RoundDraw, n)
	for i := 0; i < n; i++ {
		draw[i] = t.pick(rng, nil)
	}
	return draw
}

// SampleWhere draws like Sample but only from entries accepted by allow.
// Returns a nil draw when no entry is allowed.
func (t *Table) SampleWhere(rng *rand.Rand, n int, allow func(stone.Option) bool) stone.RoundDraw {
	total := 0.0
	for _, e := range t.entries {
		if allow(e.Option) {
			total += e.Weight
		}
	}
	if total == 0 {
		return nil
	}
	draw := make(stone.RoundDraw, n)
	for i := 0; i < n; i++ {
		draw[i] = t.pickTotal(rng, allow, total)
	}
	return draw
}

func (t *Table) pick(rng *rand.Rand, allow func(stone.Option) bool) stone.Option {
	return t.pickTotal(rng, allow, t.total)
}

func (t *Table) pickTotal(rng *rand.Rand, allow func(stone.Option) bool, total float64) stone.Option {
	r := rng.Float64() * total
	acc := 0.0
	last := t.entries[0].Option
	for _, e := range t.entries {
		if allow != nil && !allow(e.Option) {
			continue
		}
		if e.Weight == 0 {
			continue
		}
		last = e.Option
		acc += e.Weight
		if r < acc {
			return e.Option
		}
	}
	// float accumulation can land exactly on total; fall back to the
	// last eligible entry.
	return last
}

// MaxPositiveDelta is the largest level gain a single round can give a
// positive slot. The policy's feasibility pruning builds on it.
func (t *Table) MaxPositiveDelta() int {
	maxDelta := 0
	for _, e := range t.entries {
		if e.Option.Slot.Positive() && e.Weight > 0 && e.Option.Delta > maxDelta {
			maxDelta = e.Option.Delta
		}
	}
	return maxDelta
}

// Entries returns a copy of the catalog, mostly for diagnostics.
func (t *Table) Entries() []Entry {
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}
