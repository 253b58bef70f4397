package engraving

import (
	"fmt"

	"github.com/facetlab/stonesim/internal/stone"
)

// ResolvePriorities turns an ordered priority list of engraving names
// (most important first) into per-slot weights for the stone at hand.
// The higher a positive engraving ranks, the larger its slot's weight;
// a positive engraving absent from the list gets weight zero. The
// negative slot always carries weight zero, its handling is the cap's
// job, not the priority ranking's.
func ResolvePriorities(names []string, sp StoneSpec) (map[stone.Slot]float64, error) {
	for _, name := range names {
		if _, ok := catalog[name]; !ok {
			return nil, fmt.Errorf("priorities: unknown engraving %q", name)
		}
	}

	weights := map[stone.Slot]float64{
		stone.PositiveA: 0,
		stone.PositiveB: 0,
		stone.Negative:  0,
	}
	for rank, name := range names {
		w := float64(len(names) - rank)
		switch name {
		case sp.PositiveA:
			weights[stone.PositiveA] = w
		case sp.PositiveB:
			weights[stone.PositiveB] = w
		}
	}
	return weights, nil
}

// PreferredSlot picks the tie-break slot: the stone's positive engraving
// that ranks highest in the priority list, defaulting to positive-a when
// neither is ranked.
func PreferredSlot(names []string, sp StoneSpec) stone.Slot {
	for _, name := range names {
		switch name {
		case sp.PositiveA:
			return stone.PositiveA
		case sp.PositiveB:
			return stone.PositiveB
		}
	}
	return stone.PositiveA
}

// ResolveNegativeCap looks up the cap for the stone's negative engraving
// in the per-engraving cap table. Missing entries fall back to def.
func ResolveNegativeCap(caps map[string]int, sp StoneSpec, def int) (int, error) {
	for name := range caps {
		p, ok := catalog[name]
		if !ok {
			return 0, fmt.Errorf("negative caps: unknown engraving %q", name)
		}
		if p != Negative {
			return 0, fmt.Errorf("negative caps: %q is not a negative engraving", name)
		}
	}
	if cap, ok := caps[sp.Negative]; ok {
		return cap, nil
	}
	return def, nil
}
