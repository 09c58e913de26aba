package main

import (
	"fmt"

	"github.com/sourceplane/flowgate/internal/loader"
	"github.com/sourceplane/flowgate/internal/planner"
	"github.com/sourceplane/flowgate/internal/render"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <workflow>",
	Short: "Show the job DAG of a workflow",
	Long:  "Build the job DAG for a workflow file and print it: inlined call jobs, dependencies and effective permissions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showGraph(args[0])
	},
}

func registerGraphCommand(root *cobra.Command) {
	root.AddCommand(graphCmd)
}

func showGraph(path string) error {
	store, err := loader.NewStore(cfg.WorkflowDir, log)
	if err != nil {
		return err
	}

	root, err := store.Load(path)
	if err != nil {
		return err
	}

	graph, err := planner.NewBuilder(store, log).Build(root)
	if err != nil {
		return err
	}

	fmt.Print(render.NewGraphViewer(graph).View())
	return nil
}
