// Package engraving names the effects that can appear on an ability
// stone's slots and resolves user-facing configuration (allowed
// engravings, priority lists, per-negative caps) into the slot-level
// values the decision policy works with.
package engraving

import "fmt"

type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// catalog is the full set of known engravings keyed by display name.
var catalog = map[string]Polarity{
	"Adrenaline":              Positive,
	"All-Out Attack":          Positive,
	"Ambush Master":           Positive,
	"Awakening":               Positive,
	"Barricade":               Positive,
	"Broken Bone":             Positive,
	"Contender":               Positive,
	"Crisis Evasion":          Positive,
	"Crushing Fist":           Positive,
	"Cursed Doll":             Positive,
	"Disrespect":              Positive,
	"Divine Protection":       Positive,
	"Drops of Ether":          Positive,
	"Emergency Rescue":        Positive,
	"Enhanced Shield":         Positive,
	"Ether Predator":          Positive,
	"Expert":                  Positive,
	"Explosive Expert":        Positive,
	"Fortitude":               Positive,
	"Grudge":                  Positive,
	"Heavy Armor":             Positive,
	"Hit Master":              Positive,
	"Keen Blunt Weapon":       Positive,
	"Lightning Fury":          Positive,
	"Magick Stream":           Positive,
	"Mass Increase":           Positive,
	"Master Brawler":          Positive,
	"Master of Escape":        Positive,
	"Master's Tenacity":       Positive,
	"Max MP Increase":         Positive,
	"MP Efficiency Increase":  Positive,
	"Necromancy":              Positive,
	"Precise Dagger":          Positive,
	"Preemptive Strike":       Positive,
	"Propulsion":              Positive,
	"Raid Captain":            Positive,
	"Shield Piercing":         Positive,
	"Sight Focus":             Positive,
	"Spirit Absorption":       Positive,
	"Stabilized Status":       Positive,
	"Strong Will":             Positive,
	"Super Charge":            Positive,
	"Vital Point Hit":         Positive,
	"Atk. Power Reduction":    Negative,
	"Atk. Speed Reduction":    Negative,
	"Defense Reduction":       Negative,
	"Move Speed Reduction":    Negative,
}

// Lookup reports the polarity of a named engraving.
func Lookup(name string) (Polarity, bool) {
	p, ok := catalog[name]
	return p, ok
}

// StoneSpec is the engraving identity of one stone: two positives and
// one negative, in slot order.
type StoneSpec struct {
	PositiveA string
	PositiveB string
	Negative  string
}

// Validate checks the three names against the catalog and their
// polarities against their slots.
func (sp StoneSpec) Validate() error {
	for _, name := range []string{sp.PositiveA, sp.PositiveB} {
		p, ok := catalog[name]
		if !ok {
			return fmt.Errorf("unknown engraving %q", name)
		}
		if p != Positive {
			return fmt.Errorf("engraving %q is negative, cannot sit on a positive slot", name)
		}
	}
	p, ok := catalog[sp.Negative]
	if !ok {
		return fmt.Errorf("unknown engraving %q", sp.Negative)
	}
	if p != Negative {
		return fmt.Errorf("engraving %q is positive, cannot sit on the negative slot", sp.Negative)
	}
	if sp.PositiveA == sp.PositiveB {
		return fmt.Errorf("duplicate positive engraving %q", sp.PositiveA)
	}
	return nil
}
