package main

import (
	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'cvdfn' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "cvdfn",
		Short:        "Build and run the CVD serverless functions",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to functions config (JSON or YAML, default $CVDFN_CONFIG or functions.config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug {
			_ = utils.SetLevel("debug")
		}
	}

	rootCmd.AddCommand(newCopyModelsCmd(), newServeCmd())
	return rootCmd
}

// loadConfig returns the config for a command. When fallback is true an
// unreadable file is logged and the defaults are used instead.
func loadConfig(fallback bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if !fallback {
			return nil, err
		}
		utils.Warn("ignoring config %s: %v", configPath, err)
		cfg = config.Default()
		cfg.ApplyEnv()
	}
	if cfg.Log.Level != "" && !debug {
		if err := utils.SetLevel(cfg.Log.Level); err != nil {
			utils.Warn("%v", err)
		}
	}
	return cfg, nil
}
