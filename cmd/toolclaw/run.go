package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/pkg/plan"
	"github.com/spf13/cobra"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		planFile string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "run [input...]",
		Short: "Execute a plan once and print its transcript",
		Long: `Execute a plan once and print its transcript.

With --plan the plan is read from a JSON or YAML file. Otherwise the input
must contain a JSON plan, possibly wrapped in prose or code fences. Use "-"
to read the input from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if planFile == "" && input == "" {
				return errors.New("run: an input or --plan is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			var res agent.Result
			if planFile != "" {
				p, err := plan.Load(planFile)
				if err != nil {
					return err
				}
				if input == "" {
					input = "plan:" + planFile
				}
				res, err = rt.Agent.Execute(ctx, input, p)
				if err != nil {
					return err
				}
			} else {
				res, err = rt.Agent.Run(ctx, input)
				if err != nil {
					return err
				}
			}

			if err := printResult(cmd.OutOrStdout(), res, asJSON); err != nil {
				return err
			}
			if res.State == agent.StateFailed {
				return fmt.Errorf("run %s: %s", res.RunID, res.StopReason)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&planFile, "plan", "p", "", "Plan file (JSON or YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

// readInput joins args into one instruction. A single "-" reads stdin.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

func printResult(w io.Writer, res agent.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if res.Transcript != "" {
		fmt.Fprintln(w, res.Transcript)
	}
	fmt.Fprintf(w, "\nrun %s: %s (%s), %d steps, %d failures, %s\n",
		res.RunID, res.State, res.StopReason, res.StepsExecuted, res.Failures(),
		res.Duration.Round(time.Millisecond))
	return nil
}
