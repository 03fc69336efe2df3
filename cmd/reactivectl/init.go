package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
)

func initCmd(configDir *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default reactive.json",
		Long: `Write reactive.json with the default settings to the config
directory. Environment variables (REACTIVE_*) still override the
file at run time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(*configDir) && !force {
				return errors.New("C201").
					WithDetail(config.ConfigFileName + " already exists in " + *configDir).
					WithSuggestion("Use --force to overwrite it")
			}
			path := filepath.Join(*configDir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
