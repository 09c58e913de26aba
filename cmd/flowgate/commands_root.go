package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sourceplane/flowgate/internal/config"
	"github.com/sourceplane/flowgate/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	workflowDir string
	logLevel    string

	cfg *config.Config
	log *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "flowgate",
	Short: "Workflow orchestration engine: YAML workflows → job DAG runs",
	Long:  "flowgate compiles workflow definitions with reusable call references into a deterministic job DAG and executes it with least-privilege permissions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if workflowDir != "" {
			cfg.WorkflowDir = workflowDir
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		log = logger.Init(cfg.LogLevel, "flowgate")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (FLOWGATE_* env vars override)")
	rootCmd.PersistentFlags().StringVarP(&workflowDir, "workflow-dir", "w", "", "Directory workflow references resolve against")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	registerRunCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerGraphCommand(rootCmd)
	registerWorkflowsCommand(rootCmd)
}
