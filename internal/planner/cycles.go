package planner

import "github.com/sourceplane/flowgate/internal/model"

// detectCycles runs a depth-first traversal over the needs edges,
// tracking the recursion stack. Any back-edge fails the build with a
// CyclicDependencyError naming the cycle.
func detectCycles(g *model.Graph) error {
	const (
		white = iota // unvisited
		grey         // on the recursion stack
		black        // fully explored
	)

	color := make(map[string]int, len(g.Nodes))
	var stack []string

	var visit func(id string) *model.CyclicDependencyError
	visit = func(id string) *model.CyclicDependencyError {
		color[id] = grey
		stack = append(stack, id)

		for _, need := range g.Nodes[id].Needs {
			if _, exists := g.Nodes[need]; !exists {
				continue
			}
			switch color[need] {
			case grey:
				// Back-edge: slice the cycle out of the stack.
				start := 0
				for i, sid := range stack {
					if sid == need {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), need)
				return &model.CyclicDependencyError{Cycle: cycle}
			case white:
				if err := visit(need); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
