// Package main is the entry point for the toolclaw CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command that builds a runtime.
type globalFlags struct {
	config    string
	logLevel  string
	dataDir   string
	workspace string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "toolclaw",
		Short:         "Run tool plans through a sandboxed execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Path to configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "Directory for persistent data")
	pf.StringVar(&flags.workspace, "workspace", "", "Workspace root for file tools")

	root.AddCommand(
		versionCmd(),
		runCmd(flags),
		toolsCmd(flags),
		historyCmd(flags),
		serveCmd(flags),
		mcpCmd(flags),
		shellCmd(flags),
		configCmd(flags),
		sandboxWorkerCmd(),
	)
	return root
}

// buildRuntime assembles a runtime from the global flags. Namespaces in
// skip are not loaded.
func buildRuntime(ctx context.Context, cmd *cobra.Command, flags *globalFlags, skip ...string) (*app.Runtime, error) {
	return app.Build(ctx, app.Params{
		ConfigPath:     flags.config,
		Version:        version,
		DataDir:        flags.dataDir,
		Workspace:      flags.workspace,
		LogLevel:       flags.logLevel,
		LogOutput:      cmd.ErrOrStderr(),
		SkipNamespaces: skip,
	})
}

// oneShotSkip lists the namespaces of long-running modules that one-shot
// commands never start.
var oneShotSkip = []string{"gateway", "scheduler"}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "toolclaw %s (commit: %s, built: %s)\n", version, commit, date)
			namespaces := core.Namespaces()
			if len(namespaces) == 0 {
				fmt.Fprintln(out, "\nNo compiled modules.")
				return
			}
			fmt.Fprintln(out, "\nCompiled modules:")
			for _, ns := range namespaces {
				fmt.Fprintf(out, "  %s\n", ns)
				for _, mod := range core.GetModulesByNamespace(ns) {
					fmt.Fprintf(out, "    %s\n", mod.ID)
				}
			}
		},
	}
}
