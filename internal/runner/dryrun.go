package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/sourceplane/flowgate/internal/model"
)

// DryRunExecutor prints what each job would run without executing
// anything. Every node succeeds and produces no outputs.
type DryRunExecutor struct {
	Stdout io.Writer
}

func (e *DryRunExecutor) Execute(_ context.Context, node *model.JobNode) (*Outcome, error) {
	fmt.Fprintf(e.Stdout, "→ Job %s\n", node.ID)
	for _, step := range node.Job.Steps {
		fmt.Fprintf(e.Stdout, "  - Step %s\n", step.DisplayName())
		fmt.Fprintf(e.Stdout, "    %s\n", step.Run)
	}
	return &Outcome{Status: model.StatusSucceeded}, nil
}
