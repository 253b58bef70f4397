// Package goal defines the acceptance goals that classify a finished
// stone as a success. Three modes exist: a combined positive total
// ("goals" mode, with the 16 and 14 milestone exclusions), exact
// per-slot targets ("single-stone" mode), and a user-supplied boolean
// expression over the final levels.
package goal

import (
	"fmt"

	"github.com/facetlab/stonesim/internal/stone"
)

// Goal is read-only for the duration of a run.
type Goal interface {
	// Satisfied reports whether the stone's current state meets the goal.
	Satisfied(s *stone.Stone) bool
	// BelowTarget reports whether advancing the given positive slot still
	// moves the stone toward the goal.
	BelowTarget(s *stone.Stone, sl stone.Slot) bool
	// Shortfall is the minimum number of further positive levels needed.
	// Zero means the goal is met or cannot be bounded (expression mode).
	Shortfall(s *stone.Stone) int
	// Validate checks the goal against the configured maximum level.
	Validate(maxLevel int) error

	fmt.Stringer
}

// Total is the "goals" mode: the two positive levels must sum to at
// least Total. Totals 16 and 14 carry the conventional exclusions:
// nobody wants an 8/8 stone when aiming for 16, and 14 requires both
// positives at 7+, or a 6 paired with a 9 or better.
type Total struct {
	Total int
}

func (g Total) Satisfied(s *stone.Stone) bool {
	a, b := s.Level(stone.PositiveA), s.Level(stone.PositiveB)
	if a+b < g.Total {
		return false
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	switch g.Total {
	case 16:
		return lo >= 6 && !(a == 8 && b == 8)
	case 14:
		return lo >= 7 || (lo == 6 && hi >= 9)
	default:
		return true
	}
}

func (g Total) BelowTarget(s *stone.Stone, sl stone.Slot) bool {
	if !sl.Positive() {
		return false
	}
	return s.PositiveTotal() < g.Total
}

func (g Total) Shortfall(s *stone.Stone) int {
	if d := g.Total - s.PositiveTotal(); d > 0 {
		return d
	}
	return 0
}

func (g Total) Validate(maxLevel int) error {
	if g.Total <= 0 {
		return fmt.Errorf("goal total must be positive, got %d", g.Total)
	}
	if g.Total > 2*maxLevel {
		return fmt.Errorf("goal total %d exceeds twice the maximum level (%d)", g.Total, 2*maxLevel)
	}
	return nil
}

func (g Total) String() string {
	return fmt.Sprintf("total>=%d", g.Total)
}

// Exact is the "single-stone" mode: each positive slot has its own
// minimum level.
type Exact struct {
	A int
	B int
}

func (g Exact) Satisfied(s *stone.Stone) bool {
	return s.Level(stone.PositiveA) >= g.A && s.Level(stone.PositiveB) >= g.B
}

func (g Exact) target(sl stone.Slot) int {
	switch sl {
	case stone.PositiveA:
		return g.A
	case stone.PositiveB:
		return g.B
	}
	return 0
}

func (g Exact) BelowTarget(s *stone.Stone, sl stone.Slot) bool {
	if !sl.Positive() {
		return false
	}
	return s.Level(sl) < g.target(sl)
}

func (g Exact) Shortfall(s *stone.Stone) int {
	short := 0
	for _, sl := range []stone.Slot{stone.PositiveA, stone.PositiveB} {
		if d := g.target(sl) - s.Level(sl); d > 0 {
			short += d
		}
	}
	return short
}

func (g Exact) Validate(maxLevel int) error {
	if g.A < 0 || g.B < 0 {
		return fmt.Errorf("goal levels must not be negative, got %d/%d", g.A, g.B)
	}
	if g.A == 0 && g.B == 0 {
		return fmt.Errorf("at least one goal level must be positive")
	}
	if g.A > maxLevel || g.B > maxLevel {
		return fmt.Errorf("goal levels %d/%d exceed maximum level %d", g.A, g.B, maxLevel)
	}
	return nil
}

func (g Exact) String() string {
	return fmt.Sprintf("exact %d/%d", g.A, g.B)
}
