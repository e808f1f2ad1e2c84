package main

import (
	"github.com/flemzord/toolclaw/internal/sandbox"
	"github.com/spf13/cobra"
)

// sandboxWorkerCmd runs one code execution request read from stdin. The
// process and docker runners spawn it; it is not meant for direct use.
func sandboxWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:    sandbox.WorkerCommand,
		Short:  "Run one sandboxed code request from stdin",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sandbox.ServeWorker(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
