package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds engine defaults shared by all commands. Values come from
// an optional config file overridden by FLOWGATE_* environment variables.
type Config struct {
	Concurrency int    `mapstructure:"concurrency"`
	LogLevel    string `mapstructure:"log_level"`
	WorkflowDir string `mapstructure:"workflow_dir"`
	WorkDir     string `mapstructure:"work_dir"`
}

// Load reads configuration from the given file path. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("concurrency", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("workflow_dir", ".")
	v.SetDefault("work_dir", ".")

	v.SetEnvPrefix("FLOWGATE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	return &cfg, nil
}
