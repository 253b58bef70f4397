package engraving

import "fmt"

// Filter decides whether a stone's positive engravings intersect the
// configured allowed set enough to be worth faceting at all. Match
// counts scale with how many engravings are configured: one configured
// name must be present, two configured names must both be present, and
// with three or more the stone must carry at least two of them.
type Filter struct {
	allowed map[string]bool
}

// NewFilter builds a filter from allowed engraving names. An empty list
// means no filtering. Negative engravings cannot be allowed-listed.
func NewFilter(names []string) (*Filter, error) {
	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		p, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("possible engravings: unknown engraving %q", name)
		}
		if p != Positive {
			return nil, fmt.Errorf("possible engravings: %q is a negative engraving", name)
		}
		if allowed[name] {
			return nil, fmt.Errorf("possible engravings: duplicate %q", name)
		}
		allowed[name] = true
	}
	return &Filter{allowed: allowed}, nil
}

// Match reports whether the stone passes the filter.
func (f *Filter) Match(sp StoneSpec) bool {
	if len(f.allowed) == 0 {
		return true
	}
	hits := 0
	if f.allowed[sp.PositiveA] {
		hits++
	}
	if f.allowed[sp.PositiveB] {
		hits++
	}
	switch len(f.allowed) {
	case 1:
		return hits >= 1
	case 2:
		return hits == 2
	default:
		return hits >= 2
	}
}
