package main

import (
	"fmt"
	"strings"

	"github.com/sourceplane/flowgate/internal/loader"
	"github.com/spf13/cobra"
)

var workflowsCmd = &cobra.Command{
	Use:     "workflows",
	Aliases: []string{"workflow", "ls"},
	Short:   "List workflows in the workflow directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWorkflows()
	},
}

func registerWorkflowsCommand(root *cobra.Command) {
	root.AddCommand(workflowsCmd)
}

func listWorkflows() error {
	store, err := loader.NewStore(cfg.WorkflowDir, log)
	if err != nil {
		return err
	}

	workflows, err := store.LoadDir(".")
	if err != nil {
		return err
	}
	if len(workflows) == 0 {
		fmt.Println("No workflows found")
		return nil
	}

	for _, wf := range workflows {
		var tags []string
		if wf.Callable() {
			tags = append(tags, "callable")
		}
		if len(wf.On.Events) > 0 {
			tags = append(tags, "on: "+strings.Join(wf.On.Events, ","))
		}
		if len(wf.On.Schedules) > 0 {
			tags = append(tags, "schedule: "+strings.Join(wf.On.Schedules, " "))
		}

		line := fmt.Sprintf("%-40s %s (%d jobs)", wf.Path, wf.Name, len(wf.Jobs))
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, "; ") + "]"
		}
		fmt.Println(line)
	}
	return nil
}
