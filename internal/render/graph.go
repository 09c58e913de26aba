package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sourceplane/flowgate/internal/model"
)

// GraphViewer provides human-readable visualization of a built job graph.
type GraphViewer struct {
	graph *model.Graph
}

// NewGraphViewer creates a new graph viewer
func NewGraphViewer(g *model.Graph) *GraphViewer {
	return &GraphViewer{graph: g}
}

// View returns a tree view of the graph: every node with its kind,
// dependencies, effective permissions and steps.
func (gv *GraphViewer) View() string {
	ids := gv.graph.NodeIDs()
	if len(ids) == 0 {
		return "No jobs in graph"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", gv.graph.Root))

	for i, id := range ids {
		node := gv.graph.Nodes[id]
		isLast := i == len(ids)-1

		prefix := "├─ "
		connector := "│  "
		if isLast {
			prefix = "└─ "
			connector = "   "
		}

		line := fmt.Sprintf("%s%s", prefix, id)
		if node.Kind == model.KindCall {
			line += fmt.Sprintf(" [call %s]", node.Job.Uses)
		}
		if node.Job.TimeoutDuration > 0 {
			line += fmt.Sprintf(" (timeout %s)", node.Job.Timeout)
		}
		sb.WriteString(line + "\n")

		if len(node.Needs) > 0 {
			needs := append([]string{}, node.Needs...)
			sort.Strings(needs)
			for _, need := range needs {
				sb.WriteString(fmt.Sprintf("%s  (needs) %s\n", connector, need))
			}
		}

		if perms := formatPermissions(node.Permissions); perms != "" {
			sb.WriteString(fmt.Sprintf("%s  permissions: %s\n", connector, perms))
		}

		for j, step := range node.Job.Steps {
			stepPrefix := connector + "  ├─ "
			if j == len(node.Job.Steps)-1 {
				stepPrefix = connector + "  └─ "
			}
			run := step.Run
			if len(run) > 60 {
				run = run[:57] + "..."
			}
			sb.WriteString(fmt.Sprintf("%s%s | %s\n", stepPrefix, step.DisplayName(), run))
		}
	}

	sb.WriteString("═══════════════════════════════════════════════════════════\n")
	sb.WriteString(fmt.Sprintf("Summary: %d jobs\n", len(ids)))

	return sb.String()
}

func formatPermissions(perms model.PermissionSet) string {
	if len(perms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(perms))
	for _, scope := range perms.Scopes() {
		parts = append(parts, fmt.Sprintf("%s:%s", scope, perms[scope]))
	}
	return strings.Join(parts, " ")
}
