package main

import (
	"context"
	"fmt"

	"github.com/flemzord/toolclaw/internal/config"
	"github.com/flemzord/toolclaw/pkg/app"
	"github.com/spf13/cobra"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(flags), configShowCmd(flags))
	return cmd
}

func configCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and provision every module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := *flags
			if len(args) == 1 {
				f.config = args[0]
			}
			rt, err := buildRuntime(cmd.Context(), cmd, &f)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			out := cmd.OutOrStdout()
			ids := rt.App.Modules()
			source := rt.ConfigPath
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(out, "Configuration OK (%s, %d modules, %d tools)\n",
				source, len(ids), len(rt.Registry.Names()))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
}

func configShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags.config)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// loadConfig reads path, the first config found in the standard
// locations, or the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil {
			return config.Default(), nil
		}
		path = resolved
	}
	return config.Load(path)
}
