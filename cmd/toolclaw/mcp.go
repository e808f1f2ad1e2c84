package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/toolclaw/internal/mcpserver"
	"github.com/spf13/cobra"
)

func mcpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose registered tools over the Model Context Protocol on stdio",
		Long: `Expose registered tools over the Model Context Protocol on stdio.

Logs are written to stderr so stdout carries only protocol messages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			srv := mcpserver.New(rt.Registry, "toolclaw", version, rt.Logger)
			return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
