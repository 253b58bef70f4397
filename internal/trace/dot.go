package trace

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

const graphName = "session"

// DOT renders the trace as a directed graph: one node per stone state,
// one edge per applied option, a final node carrying the outcome.
// The output loads into any Graphviz viewer.
func DOT(t *Trace) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", fmt.Errorf("set graph name: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("set directed: %w", err)
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", fmt.Errorf("set rankdir: %w", err)
	}

	addState := func(name string, levels [3]int) error {
		label := fmt.Sprintf("\"%d/%d (-%d)\"", levels[0], levels[1], levels[2])
		return g.AddNode(graphName, name, map[string]string{"label": label, "shape": "box"})
	}

	if err := addState("r0", t.Initial); err != nil {
		return "", fmt.Errorf("add initial node: %w", err)
	}

	prev := "r0"
	for i, step := range t.Steps {
		cur := fmt.Sprintf("r%d", i+1)
		if err := addState(cur, step.Levels); err != nil {
			return "", fmt.Errorf("add round node: %w", err)
		}
		label := "\"?\""
		if step.Chosen >= 0 && step.Chosen < len(step.Draw) {
			label = fmt.Sprintf("\"%s\"", step.Draw[step.Chosen])
		}
		if err := g.AddEdge(prev, cur, true, map[string]string{"label": label}); err != nil {
			return "", fmt.Errorf("add round edge: %w", err)
		}
		prev = cur
	}

	if t.Outcome != "" {
		end := "outcome"
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%s\"", t.Outcome),
			"shape": "doublecircle",
		}
		if err := g.AddNode(graphName, end, attrs); err != nil {
			return "", fmt.Errorf("add outcome node: %w", err)
		}
		edgeAttrs := map[string]string(nil)
		if t.Abandoned {
			edgeAttrs = map[string]string{"label": "\"abandon\"", "style": "dashed"}
		}
		if err := g.AddEdge(prev, end, true, edgeAttrs); err != nil {
			return "", fmt.Errorf("add outcome edge: %w", err)
		}
	}

	return g.String(), nil
}
