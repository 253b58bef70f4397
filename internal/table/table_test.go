package table

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/facetlab/stonesim/internal/stone"
)

func TestNew_RejectsEmptyCatalog(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestNew_RejectsAllZeroWeights(t *testing.T) {
	_, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 0},
		{Option: stone.Option{Slot: stone.PositiveB, Delta: 1}, Weight: 0},
	})
	if !errors.Is(err, ErrZeroWeights) {
		t.Fatalf("expected ErrZeroWeights, got %v", err)
	}
}

func TestNew_RejectsNegativeWeight(t *testing.T) {
	_, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: -1},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSample_DeterministicForSeed(t *testing.T) {
	tab, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 3},
		{Option: stone.Option{Slot: stone.PositiveB, Delta: 1}, Weight: 3},
		{Option: stone.Option{Slot: stone.Negative, Delta: 1}, Weight: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	a := tab.Sample(rand.New(rand.NewSource(7)), 4)
	b := tab.Sample(rand.New(rand.NewSource(7)), 4)
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("expected draws of 4, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draws diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSample_NeverPicksZeroWeightEntry(t *testing.T) {
	tab, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 1},
		{Option: stone.Option{Slot: stone.Negative, Delta: 5}, Weight: 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(99))
	for _, o := range tab.Sample(rng, 200) {
		if o.Slot == stone.Negative {
			t.Fatalf("sampled zero-weight option %v", o)
		}
	}
}

func TestSample_RoughlyFollowsWeights(t *testing.T) {
	tab, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 9},
		{Option: stone.Option{Slot: stone.PositiveB, Delta: 1}, Weight: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	countA := 0
	const n = 10000
	for _, o := range tab.Sample(rng, n) {
		if o.Slot == stone.PositiveA {
			countA++
		}
	}
	ratio := float64(countA) / n
	if ratio < 0.85 || ratio > 0.95 {
		t.Fatalf("expected ~0.9 ratio for 9:1 weights, got %v", ratio)
	}
}

func TestSampleWhere_FiltersAndSignalsEmpty(t *testing.T) {
	tab, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 1},
		{Option: stone.Option{Slot: stone.Negative, Delta: 1}, Weight: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(5))
	draw := tab.SampleWhere(rng, 50, func(o stone.Option) bool { return o.Slot.Positive() })
	for _, o := range draw {
		if !o.Slot.Positive() {
			t.Fatalf("filter leaked option %v", o)
		}
	}

	draw = tab.SampleWhere(rng, 4, func(o stone.Option) bool { return false })
	if draw != nil {
		t.Fatalf("expected nil draw when everything is filtered, got %v", draw)
	}
}

func TestMaxPositiveDelta(t *testing.T) {
	tab, err := New([]Entry{
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 1}, Weight: 1},
		{Option: stone.Option{Slot: stone.PositiveB, Delta: 2}, Weight: 1},
		{Option: stone.Option{Slot: stone.PositiveA, Delta: 3}, Weight: 0},
		{Option: stone.Option{Slot: stone.Negative, Delta: 5}, Weight: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	// zero-weight and negative-slot entries do not count
	if got := tab.MaxPositiveDelta(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
