package goal

import (
	"testing"

	"github.com/facetlab/stonesim/internal/stone"
)

func stoneAt(t *testing.T, a, b, neg int) *stone.Stone {
	t.Helper()
	s := stone.New(10)
	s.Apply(stone.Option{Slot: stone.PositiveA, Delta: a})
	s.Apply(stone.Option{Slot: stone.PositiveB, Delta: b})
	s.Apply(stone.Option{Slot: stone.Negative, Delta: neg})
	return s
}

func TestTotal16_Boundaries(t *testing.T) {
	g := Total{Total: 16}

	cases := []struct {
		a, b int
		want bool
	}{
		{9, 7, true},
		{7, 9, true},
		{10, 6, true},
		{6, 10, true},
		{8, 8, false}, // excluded by design
		{10, 5, false},
		{9, 6, false},
	}
	for _, c := range cases {
		if got := g.Satisfied(stoneAt(t, c.a, c.b, 0)); got != c.want {
			t.Errorf("total 16 with %d/%d: expected %v, got %v", c.a, c.b, c.want, got)
		}
	}
}

func TestTotal14_Boundaries(t *testing.T) {
	g := Total{Total: 14}

	cases := []struct {
		a, b int
		want bool
	}{
		{7, 7, true},
		{9, 6, true},
		{6, 9, true},
		{10, 6, true},
		{8, 6, false}, // a 6 needs a 9 or better on the other side
		{6, 8, false},
		{9, 5, false}, // a positive slot below 6 excludes the combination
		{5, 9, false},
	}
	for _, c := range cases {
		if got := g.Satisfied(stoneAt(t, c.a, c.b, 0)); got != c.want {
			t.Errorf("total 14 with %d/%d: expected %v, got %v", c.a, c.b, c.want, got)
		}
	}
}

func TestTotal_PlainSumForOtherTotals(t *testing.T) {
	g := Total{Total: 12}
	if !g.Satisfied(stoneAt(t, 10, 2, 0)) {
		t.Fatal("10/2 should satisfy a plain total of 12")
	}
	if g.Satisfied(stoneAt(t, 6, 5, 0)) {
		t.Fatal("6/5 should not satisfy a total of 12")
	}
}

func TestTotal_ShortfallAndBelowTarget(t *testing.T) {
	g := Total{Total: 16}
	s := stoneAt(t, 5, 4, 0)
	if got := g.Shortfall(s); got != 7 {
		t.Fatalf("expected shortfall 7, got %d", got)
	}
	if !g.BelowTarget(s, stone.PositiveA) {
		t.Fatal("positive slot should be below target while the total is unmet")
	}
	if g.BelowTarget(s, stone.Negative) {
		t.Fatal("negative slot is never below target")
	}

	done := stoneAt(t, 9, 7, 0)
	if g.Shortfall(done) != 0 {
		t.Fatal("met goal must have zero shortfall")
	}
	if g.BelowTarget(done, stone.PositiveA) {
		t.Fatal("met goal leaves no slot below target")
	}
}

func TestTotal_Validate(t *testing.T) {
	if err := (Total{Total: 16}).Validate(10); err != nil {
		t.Fatal(err)
	}
	if err := (Total{Total: 21}).Validate(10); err == nil {
		t.Fatal("expected error for total above twice the max level")
	}
	if err := (Total{Total: 0}).Validate(10); err == nil {
		t.Fatal("expected error for zero total")
	}
}

func TestExact(t *testing.T) {
	g := Exact{A: 9, B: 7}
	if !g.Satisfied(stoneAt(t, 9, 7, 3)) {
		t.Fatal("9/7 should satisfy exact 9/7")
	}
	if !g.Satisfied(stoneAt(t, 10, 8, 0)) {
		t.Fatal("exceeding both targets still satisfies")
	}
	if g.Satisfied(stoneAt(t, 7, 9, 0)) {
		t.Fatal("slots are not interchangeable in single-stone mode")
	}

	s := stoneAt(t, 8, 7, 0)
	if got := g.Shortfall(s); got != 1 {
		t.Fatalf("expected shortfall 1, got %d", got)
	}
	if !g.BelowTarget(s, stone.PositiveA) {
		t.Fatal("a is below its target")
	}
	if g.BelowTarget(s, stone.PositiveB) {
		t.Fatal("b reached its target")
	}
}

func TestExact_Validate(t *testing.T) {
	if err := (Exact{A: 9, B: 7}).Validate(10); err != nil {
		t.Fatal(err)
	}
	if err := (Exact{A: 11, B: 7}).Validate(10); err == nil {
		t.Fatal("expected error for target above max level")
	}
	if err := (Exact{}).Validate(10); err == nil {
		t.Fatal("expected error for all-zero targets")
	}
	if err := (Exact{A: -1, B: 7}).Validate(10); err == nil {
		t.Fatal("expected error for negative target")
	}
}

func TestExpr(t *testing.T) {
	g, err := NewExpr(`total >= 14 && neg <= 3`)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Satisfied(stoneAt(t, 7, 7, 3)) {
		t.Fatal("7/7 with neg 3 should satisfy")
	}
	if g.Satisfied(stoneAt(t, 7, 7, 4)) {
		t.Fatal("neg 4 should fail the expression")
	}
	if g.Shortfall(stoneAt(t, 0, 0, 0)) != 0 {
		t.Fatal("expression goals report zero shortfall")
	}
}

func TestNewExpr_Errors(t *testing.T) {
	if _, err := NewExpr(""); err == nil {
		t.Fatal("expected error for empty expression")
	}
	if _, err := NewExpr(`total >`); err == nil {
		t.Fatal("expected error for malformed expression")
	}
	if _, err := NewExpr(`total + 1`); err == nil {
		t.Fatal("expected error for non-boolean expression")
	}
	if _, err := NewExpr(`bogus > 1`); err == nil {
		t.Fatal("expected error for unknown variable")
	}
}
