// Package trace records what happened inside one faceting session:
// every candidate draw, the option chosen from it, and the stone state
// after each application. Traces feed the verbose batch mode, the
// session log, and the DOT export.
package trace

import "github.com/facetlab/stonesim/internal/stone"

// Step is one applied round.
type Step struct {
	Round  int                       `json:"round"`
	Draw   []stone.Option            `json:"draw"`
	Chosen int                       `json:"chosen"`
	Levels [stone.SlotCount]int      `json:"levels"`
}

// Trace is the full history of one session.
type Trace struct {
	Initial   [stone.SlotCount]int `json:"initial"`
	Steps     []Step               `json:"steps"`
	Outcome   string               `json:"outcome"`
	Final     [stone.SlotCount]int `json:"final"`
	Abandoned bool                 `json:"abandoned,omitempty"`
}

// New starts a trace from the stone's initial state.
func New(s *stone.Stone) *Trace {
	return &Trace{Initial: s.Levels()}
}

// Record appends one applied round. levels is the stone state after the
// chosen option landed.
func (t *Trace) Record(round int, draw stone.RoundDraw, chosen int, levels [stone.SlotCount]int) {
	cp := make([]stone.Option, len(draw))
	copy(cp, draw)
	t.Steps = append(t.Steps, Step{Round: round, Draw: cp, Chosen: chosen, Levels: levels})
}

// Finish seals the trace with the terminal classification.
func (t *Trace) Finish(outcome string, final [stone.SlotCount]int, abandoned bool) {
	t.Outcome = outcome
	t.Final = final
	t.Abandoned = abandoned
}
