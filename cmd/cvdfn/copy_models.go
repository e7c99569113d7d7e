package main

import (
	"github.com/awantoch/cvdfunctions/staging"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/spf13/cobra"
)

// newCopyModelsCmd creates the 'copy-models' subcommand. It runs in the build
// and must never fail it: every outcome exits 0, unknown flags are ignored,
// and a malformed flag value is reported and then left at its default.
func newCopyModelsCmd() *cobra.Command {
	var source, dest, region string
	var models []string

	run := func(cmd *cobra.Command) {
		cfg, _ := loadConfig(true)
		flags := cmd.Flags()
		if flags.Changed("source") {
			cfg.Staging.Source = source
		}
		if flags.Changed("dest") {
			cfg.Staging.Dest = dest
		}
		if flags.Changed("region") {
			cfg.Staging.Region = region
		}
		if flags.Changed("models") {
			cfg.Staging.Models = models
		}
		staging.Stage(cmd.Context(), cfg.Staging)
	}

	cmd := &cobra.Command{
		Use:   "copy-models",
		Short: "Copy model weight files into the functions bundle",
		Args:  cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd)
		},
	}
	// Flags parsed before the bad one keep their values.
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		utils.Warn("copy-models: %v (using defaults)", err)
		run(cmd)
		return nil
	})
	cmd.Flags().StringVar(&source, "source", "", "Model source directory or s3://bucket/prefix (default \"backend\")")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory (default \"netlify/functions/models\")")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for an s3:// source")
	cmd.Flags().StringSliceVar(&models, "models", nil, "Model file names to copy (default: all backend models)")
	return cmd
}
