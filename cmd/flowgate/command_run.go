package main

import (
	"fmt"
	"os"

	"github.com/sourceplane/flowgate/internal/loader"
	"github.com/sourceplane/flowgate/internal/planner"
	"github.com/sourceplane/flowgate/internal/render"
	"github.com/sourceplane/flowgate/internal/report"
	"github.com/sourceplane/flowgate/internal/runner"
	"github.com/spf13/cobra"
)

var (
	runExecute     bool
	runWorkDir     string
	runConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Execute a workflow",
	Long:  "Build the job DAG for a workflow file and execute it. The default is a dry-run; pass --execute to run step commands.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, args[0])
	},
}

func registerRunCommand(root *cobra.Command) {
	root.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExecute, "execute", "x", false, "Actually execute step commands (default is dry-run)")
	runCmd.Flags().StringVar(&runWorkDir, "workdir", "", "Working directory for step commands")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Maximum jobs running in parallel")
}

func runWorkflow(cmd *cobra.Command, path string) error {
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

	var exec runner.StepExecutor
	if runExecute {
		workDir := runWorkDir
		if workDir == "" {
			workDir = cfg.WorkDir
		}
		exec = runner.NewShellExecutor(runner.ResolveWorkDir(workDir), os.Stdout, os.Stderr)
	} else {
		fmt.Println("□ Dry-run mode enabled. Use --execute to run commands.")
		exec = &runner.DryRunExecutor{Stdout: os.Stdout}
	}

	concurrency := runConcurrency
	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}

	run, err := runner.New(exec, concurrency, log).Run(cmd.Context(), graph)
	if err != nil {
		return err
	}

	summary := report.Aggregate(run)
	fmt.Print(render.Summary(summary))

	if !summary.Succeeded() {
		return fmt.Errorf("run %s failed", run.ID)
	}
	fmt.Println("✓ Run complete")
	return nil
}
