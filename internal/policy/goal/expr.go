package goal

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/facetlab/stonesim/internal/stone"
)

// exprEnv lists the variables an acceptance expression may reference:
// the final positive levels a and b, the negative level neg, and the
// combined positive total.
func exprEnv(a, b, neg int) map[string]any {
	return map[string]any{
		"a":     a,
		"b":     b,
		"neg":   neg,
		"total": a + b,
	}
}

// Expr is the expression mode: a boolean condition over the final stone
// state, e.g. `total >= 14 && neg <= 3 && min(a, b) >= 6`.
type Expr struct {
	source  string
	program *vm.Program
}

// NewExpr compiles the expression once; a compile failure is a
// configuration error surfaced before any simulation runs.
func NewExpr(source string) (*Expr, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("goal expression is empty")
	}
	if err := validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid goal expression %q: %w", source, err)
	}
	program, err := expr.Compile(source, expr.Env(exprEnv(0, 0, 0)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid goal expression %q: %w", source, err)
	}
	return &Expr{source: source, program: program}, nil
}

func (g *Expr) Satisfied(s *stone.Stone) bool {
	env := exprEnv(s.Level(stone.PositiveA), s.Level(stone.PositiveB), s.Level(stone.Negative))
	out, err := expr.Run(g.program, env)
	if err != nil {
		// The env is closed and typed, so this only fires on a bug in
		// the expression itself; treat it as unsatisfied.
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// BelowTarget cannot see inside an arbitrary expression, so any positive
// slot that can still grow counts as below target.
func (g *Expr) BelowTarget(s *stone.Stone, sl stone.Slot) bool {
	if !sl.Positive() {
		return false
	}
	return s.Level(sl) < s.MaxLevel()
}

// Shortfall is unbounded for expressions; returning zero disables the
// feasibility pruning for this mode.
func (g *Expr) Shortfall(*stone.Stone) int { return 0 }

func (g *Expr) Validate(int) error {
	if g.program == nil {
		return fmt.Errorf("goal expression not compiled")
	}
	return nil
}

func (g *Expr) String() string {
	return fmt.Sprintf("expr(%s)", g.source)
}
