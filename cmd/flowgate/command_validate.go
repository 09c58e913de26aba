package main

import (
	"fmt"

	"github.com/sourceplane/flowgate/internal/loader"
	"github.com/sourceplane/flowgate/internal/planner"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow>...",
	Short: "Validate workflow YAML",
	Long:  "Parse and validate workflow files, including building the full job DAG so call references, cycles and permission grants are checked.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateWorkflows(args)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func validateWorkflows(paths []string) error {
	store, err := loader.NewStore(cfg.WorkflowDir, log)
	if err != nil {
		return err
	}
	builder := planner.NewBuilder(store, log)

	failed := false
	for _, path := range paths {
		wf, err := store.Load(path)
		if err == nil {
			_, err = builder.Build(wf)
		}
		if err != nil {
			failed = true
			fmt.Printf("✗ %s: %v\n", path, err)
			continue
		}
		fmt.Printf("✓ %s (%s, %d jobs)\n", path, wf.Name, len(wf.Jobs))
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}
