// Package stone models the ability stone being faceted: three engraving
// slots with integer levels, a round counter, and optional per-slot
// attempt budgets.
package stone

import "fmt"

type Slot int

const (
	PositiveA Slot = iota
	PositiveB
	Negative
)

const SlotCount = 3

func (s Slot) String() string {
	switch s {
	case PositiveA:
		return "positive-a"
	case PositiveB:
		return "positive-b"
	case Negative:
		return "negative"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	sl, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = sl
	return nil
}

func (s Slot) Valid() bool {
	return s >= PositiveA && s <= Negative
}

func (s Slot) Positive() bool {
	return s == PositiveA || s == PositiveB
}

// ParseSlot maps a config-level slot name to its identifier.
func ParseSlot(name string) (Slot, error) {
	switch name {
	case "positive-a", "a":
		return PositiveA, nil
	case "positive-b", "b":
		return PositiveB, nil
	case "negative", "neg":
		return Negative, nil
	}
	return 0, fmt.Errorf("unknown slot %q", name)
}

// Option is one candidate adjustment: a target slot and a signed level
// delta. Options are defined by the distribution table, never by the
// simulation itself.
type Option struct {
	Slot  Slot
	Delta int
}

func (o Option) String() string {
	return fmt.Sprintf("%s%+d", o.Slot, o.Delta)
}

// RoundDraw is the ordered candidate set offered for one round.
type RoundDraw []Option

// Unlimited disables attempt budgeting for a slot.
const Unlimited = -1

// Stone is the mutable session state. Exactly one option is applied per
// round; levels stay within [0, maxLevel] by clamping.
type Stone struct {
	levels   [SlotCount]int
	attempts [SlotCount]int
	round    int
	maxLevel int
}

// New returns a blank stone. maxLevel must be positive.
func New(maxLevel int) *Stone {
	if maxLevel <= 0 {
		panic(fmt.Sprintf("stone: non-positive max level %d", maxLevel))
	}
	return &Stone{
		attempts: [SlotCount]int{Unlimited, Unlimited, Unlimited},
		maxLevel: maxLevel,
	}
}

// WithBudgets sets the per-slot attempt budgets. Unlimited leaves a slot
// unbudgeted. Returns the stone for chaining during setup.
func (s *Stone) WithBudgets(a, b, neg int) *Stone {
	s.attempts = [SlotCount]int{a, b, neg}
	return s
}

// Apply adds the option's delta to its slot, clamped to [0, maxLevel],
// consumes one attempt on that slot and advances the round counter.
// Option legality is the decision policy's concern, not checked here.
func (s *Stone) Apply(o Option) {
	lv := s.levels[o.Slot] + o.Delta
	if lv < 0 {
		lv = 0
	}
	if lv > s.maxLevel {
		lv = s.maxLevel
	}
	s.levels[o.Slot] = lv
	if s.attempts[o.Slot] != Unlimited {
		s.attempts[o.Slot]--
	}
	s.round++
	s.check()
}

// check guards the level invariant. A breach here is a bug in Apply or in
// whoever mutated the stone, so it is fatal rather than an error.
func (s *Stone) check() {
	for slot, lv := range s.levels {
		if lv < 0 || lv > s.maxLevel {
			panic(fmt.Sprintf("stone: %v level %d outside [0,%d]", Slot(slot), lv, s.maxLevel))
		}
	}
}

func (s *Stone) Level(sl Slot) int { return s.levels[sl] }

// PositiveTotal is the combined level of the two positive slots.
func (s *Stone) PositiveTotal() int {
	return s.levels[PositiveA] + s.levels[PositiveB]
}

func (s *Stone) Round() int { return s.round }

func (s *Stone) MaxLevel() int { return s.maxLevel }

// AttemptsLeft reports the remaining attempt budget for a slot, or
// Unlimited when the slot is unbudgeted.
func (s *Stone) AttemptsLeft(sl Slot) int { return s.attempts[sl] }

// Exhausted reports whether a budgeted slot has no attempts left.
func (s *Stone) Exhausted(sl Slot) bool {
	return s.attempts[sl] != Unlimited && s.attempts[sl] <= 0
}

// Terminal reports whether the round counter has reached the limit.
func (s *Stone) Terminal(roundLimit int) bool {
	return s.round >= roundLimit
}

// Levels returns a snapshot of the three slot levels in fixed order
// (positive-a, positive-b, negative).
func (s *Stone) Levels() [SlotCount]int { return s.levels }

// Clone copies the stone so a caller can evaluate hypothetical
// adjustments without touching session state.
func (s *Stone) Clone() *Stone {
	cp := *s
	return &cp
}
