package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/spf13/cobra"
)

func toolsCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime(cmd.Context(), cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rt.Registry.Descriptors())
			}
			fmt.Fprintln(out, rt.Registry.ListTools())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tool descriptors as JSON")
	cmd.AddCommand(toolsCallCmd(flags))
	return cmd
}

func toolsCallCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "call <name> [json-args]",
		Short: "Dispatch a single tool call",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := tool.Args{}
			if len(args) == 2 {
				raw := []byte(args[1])
				if err := security.ValidatePayload(raw, security.DefaultMaxPayloadSize, security.DefaultMaxJSONDepth); err != nil {
					return fmt.Errorf("arguments: %w", err)
				}
				if err := json.Unmarshal(raw, &callArgs); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}

			rt, err := buildRuntime(cmd.Context(), cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			out := rt.Registry.Dispatch(cmd.Context(), args[0], callArgs)
			fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			if out.IsError {
				return fmt.Errorf("%s: %s", args[0], out.Condition)
			}
			return nil
		},
	}
}
