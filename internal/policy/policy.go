// Package policy selects which candidate adjustment to apply each
// round, or signals that the stone is not worth finishing. Selection is
// a pure scoring function over the three slot identifiers; the policy
// never mutates the stone and never touches randomness.
package policy

import (
	"fmt"

	"github.com/facetlab/stonesim/internal/policy/goal"
	"github.com/facetlab/stonesim/internal/stone"
)

// Config fixes the policy for a whole batch. Immutable once validated.
type Config struct {
	// Priorities weights the positive slots; higher weight wins between
	// options that advance the goal equally.
	Priorities map[stone.Slot]float64
	// Goal is the acceptance goal the policy is steering toward.
	Goal goal.Goal
	// NegativeCap is the highest tolerated negative level. Options that
	// would push the negative slot past it are never chosen while an
	// alternative exists.
	NegativeCap int
	// Preferred breaks ties between equally scored positive options.
	Preferred stone.Slot
	// MaxRoundGain is the largest positive delta a single round can
	// offer, taken from the distribution table. Feasibility pruning
	// multiplies it by the rounds left.
	MaxRoundGain int
	// DisablePruning turns the early-abandon optimization off, for
	// exhaustive probability estimation.
	DisablePruning bool
}

type Policy struct {
	cfg Config
}

// New validates the configuration. All failures here are configuration
// errors and abort before any session runs.
func New(cfg Config) (*Policy, error) {
	if cfg.Goal == nil {
		return nil, fmt.Errorf("policy: acceptance goal is required")
	}
	for sl := range cfg.Priorities {
		if !sl.Valid() {
			return nil, fmt.Errorf("policy: priorities reference unknown slot %d", int(sl))
		}
	}
	if cfg.NegativeCap < 0 {
		return nil, fmt.Errorf("policy: negative cap must not be negative, got %d", cfg.NegativeCap)
	}
	if !cfg.Preferred.Positive() {
		return nil, fmt.Errorf("policy: preferred slot must be positive, got %v", cfg.Preferred)
	}
	if cfg.MaxRoundGain < 0 {
		return nil, fmt.Errorf("policy: max round gain must not be negative, got %d", cfg.MaxRoundGain)
	}
	return &Policy{cfg: cfg}, nil
}

// Decision is the policy's verdict for one round. When Abandon is set
// the other fields are meaningless; otherwise Index points into the
// draw the decision was made for.
type Decision struct {
	Abandon bool
	Index   int
	Option  stone.Option
	Score   float64
}

// Score tiers, highest first. An option on the negative slot sits
// strictly below every positive-advancing option and only wins when no
// positive option is offered at all.
const (
	tierAdvancing = 3 // positive slot, gains a level, still below target
	tierOvershoot = 2 // positive slot, gains a level past the target
	tierNegative  = 1 // negative slot, within the cap
	tierHarmful   = 0 // positive slot, zero or losing delta
)

type scored struct {
	index int
	opt   stone.Option
	tier  int
	score float64
}

// Decide picks exactly one option from the draw or signals abandonment.
// remaining is the number of rounds left after this one is applied.
func (p *Policy) Decide(s *stone.Stone, draw stone.RoundDraw, remaining int) Decision {
	best, ok := p.pickBest(s, draw)
	if !ok {
		return Decision{Abandon: true}
	}

	if !p.cfg.DisablePruning && p.hopeless(s, best.opt, remaining) {
		return Decision{Abandon: true}
	}

	return Decision{Index: best.index, Option: best.opt, Score: float64(best.tier)*1000 + best.score}
}

func (p *Policy) pickBest(s *stone.Stone, draw stone.RoundDraw) (scored, bool) {
	var best scored
	found := false
	for i, opt := range draw {
		if !p.acceptable(s, opt) {
			continue
		}
		cand := p.score(s, opt)
		cand.index = i
		if !found || p.better(cand, best) {
			best = cand
			found = true
		}
	}
	return best, found
}

// acceptable filters options the policy must never pick: slots with an
// exhausted attempt budget, and negative adjustments that would push
// the stone past the cap.
func (p *Policy) acceptable(s *stone.Stone, opt stone.Option) bool {
	if !opt.Slot.Valid() || s.Exhausted(opt.Slot) {
		return false
	}
	if opt.Slot == stone.Negative && s.Level(stone.Negative)+opt.Delta > p.cfg.NegativeCap {
		return false
	}
	return true
}

func (p *Policy) score(s *stone.Stone, opt stone.Option) scored {
	if opt.Slot == stone.Negative {
		// within the cap; prefer whatever hurts least
		return scored{opt: opt, tier: tierNegative, score: -float64(opt.Delta)}
	}

	adv := advance(s, opt)
	if adv <= 0 {
		return scored{opt: opt, tier: tierHarmful, score: float64(adv)}
	}
	tier := tierOvershoot
	if p.cfg.Goal.BelowTarget(s, opt.Slot) {
		tier = tierAdvancing
	}
	return scored{opt: opt, tier: tier, score: p.cfg.Priorities[opt.Slot] * float64(adv)}
}

// advance is the effective level gain after clamping.
func advance(s *stone.Stone, opt stone.Option) int {
	lv := s.Level(opt.Slot) + opt.Delta
	if lv < 0 {
		lv = 0
	}
	if lv > s.MaxLevel() {
		lv = s.MaxLevel()
	}
	return lv - s.Level(opt.Slot)
}

// better orders candidates: tier, then weighted score, then larger
// absolute delta, then the preferred slot, then the fixed
// a-before-b-before-negative ordering. Draw order is the final,
// stable tie-break (the earlier entry wins).
func (p *Policy) better(a, b scored) bool {
	if a.tier != b.tier {
		return a.tier > b.tier
	}
	if a.score != b.score {
		return a.score > b.score
	}
	if da, db := abs(a.opt.Delta), abs(b.opt.Delta); da != db {
		return da > db
	}
	if ap, bp := a.opt.Slot == p.cfg.Preferred, b.opt.Slot == p.cfg.Preferred; ap != bp {
		return ap
	}
	if a.opt.Slot != b.opt.Slot {
		return a.opt.Slot < b.opt.Slot
	}
	return false
}

// hopeless reports whether, even after applying the chosen option, the
// goal provably cannot be met in the rounds that remain.
func (p *Policy) hopeless(s *stone.Stone, opt stone.Option, remaining int) bool {
	after := s.Clone()
	after.Apply(opt)
	short := p.cfg.Goal.Shortfall(after)
	if short == 0 {
		return false
	}
	return short > remaining*p.cfg.MaxRoundGain
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
