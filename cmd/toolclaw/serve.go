package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway, scheduler and every configured module",
		Long: `Start the gateway, scheduler and every configured module.

The configuration file is reloaded on change or on SIGHUP: the tool policy
and reloadable module settings apply without a restart.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = rt.Close(ctx)
			}()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if watch {
				rt.WatchConfig(ctx, interval)
			}
			return rt.Serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the configuration file when it changes")
	cmd.Flags().DurationVar(&interval, "watch-interval", 5*time.Second, "Configuration poll interval")
	return cmd
}
